package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/logger"
	"github.com/glitchlabs/glitchbot/pkg/store"
)

func helpCommand(ctx context.Context, req Request) (Response, error) {
	helpText := `Look upon my works, ye mighty, and despair:
/vcjoin and /vcleave (join or leave current voice channel)
/sound and /vcsound (play a sound effect)
/random and /vcrandom (play a random sound effect)
/say and /vcsay (AI voice)
/soundlist and /search (find sounds to play)
/trivia (play trivia against your friends)
/chat (talk to me)
/wisdom (request my wisdom)
/roll (roll a dice)
/d10000 and /effects (roll on the d10000 table)
/pressf (pay respects)`

	return recorded(Text("%s", helpText), "What chat commands are available?"), nil
}

func pressFCommand(ctx context.Context, req Request) (Response, error) {
	return recorded(Text("F"), "F's in the chat boys."), nil
}

// myCommandsCommand lists what the caller may actually run, mirroring the
// dispatcher's permission check.
func myCommandsCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "What commands do I have access to?"

	requireAdmin := rt.Config.Bot.RequireAdmin
	isAdmin := rt.Store.IsAdmin(req.Platform, req.SenderID)
	isSuper := rt.Store.IsSuperadmin(req.Platform, req.SenderID)

	var names []string
	for _, def := range rt.Registry.List() {
		if requireAdmin {
			if def.Permission == PermAdmin && !isAdmin {
				continue
			}
			if def.Permission == PermSuperadmin && !isSuper {
				continue
			}
		}
		names = append(names, "/"+def.Name)
	}
	sort.Strings(names)
	return recorded(Text("You have access to these commands: %s",
		strings.Join(names, ", ")), userLine), nil
}

func getFileCommand(ctx context.Context, req Request) (Response, error) {
	userLine := "Can you send me that file?"

	path := strings.TrimSpace(req.ArgString())
	if path == "" {
		return recorded(Text("Please provide the path to a file on my server."), userLine), nil
	}

	userLine = fmt.Sprintf("Can you send me the file at %s?", path)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return recorded(Text("Couldn't find a file at that path."), userLine), nil
	}

	resp := Text("Sure, here you go.")
	resp.AddFile(path, false)
	return recorded(resp, userLine), nil
}

func versionCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	return recorded(Text("Running GlitchBot %s", rt.Version),
		"What version are you running?"), nil
}

func systemCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	const mb = 1 << 20
	uptime := time.Since(rt.StartedAt).Round(time.Second)

	report := fmt.Sprintf(`SYSTEM RESOURCES
Uptime: %s
Goroutines: %d
Heap: %d MB in use / %d MB reserved
GC cycles: %d
Go: %s on %s/%s`,
		uptime, runtime.NumGoroutine(),
		mem.HeapAlloc/mb, mem.HeapSys/mb,
		mem.NumGC, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return recorded(Text("%s", report), "Can you show me your resource usage?"), nil
}

func logsCommand(ctx context.Context, req Request) (Response, error) {
	userLine := "Can you send me your log file?"

	path := logger.FilePath()
	if path == "" {
		return recorded(Text("There are no logs recorded."), userLine), nil
	}
	if _, err := os.Stat(path); err != nil {
		return recorded(Text("There are no logs recorded."), userLine), nil
	}

	resp := Text("Sure, here you go.")
	resp.AddFile(path, false)
	return recorded(resp, userLine), nil
}

func clearLogsCommand(ctx context.Context, req Request) (Response, error) {
	if err := logger.Truncate(); err != nil {
		return Response{}, err
	}
	return recorded(Text("Trying to erase history are we?"),
		"Can you clear your log file for me?"), nil
}

func restartCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	logger.InfoC("commands", "Restart requested")
	if rt.Restart != nil {
		rt.Restart()
	}
	return Text("Restarting..."), nil
}

func crashCommand(ctx context.Context, req Request) (Response, error) {
	// Exercises the dispatcher's failure path end to end on purpose.
	panic("/crash command used")
}

func getConfigCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	name := firstArg(req)
	if name == "" {
		return recorded(Text("You need to provide a setting name to check."),
			"Can you tell me about that setting?"), nil
	}

	userLine := fmt.Sprintf("Can you tell me about the setting '%s'?", name)
	setting, err := rt.Config.FindSetting(name)
	if err != nil {
		return recorded(Text("Couldn't find a setting called '%s'.", name), userLine), nil
	}
	return recorded(Text("Setting '%s' is currently set to '%s'.",
		setting.Path, setting.Display()), userLine), nil
}

func setConfigCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you change the value of that setting?"

	if len(req.Args) < 2 {
		return recorded(Text("Format is /setconfig [setting] [new value]"), userLine), nil
	}
	name := strings.ToLower(req.Args[0])
	value := strings.Join(req.Args[1:], " ")

	userLine = fmt.Sprintf("Can you change the value of the setting %s?", name)
	path, err := rt.Config.SetSetting(name, value)
	if errors.Is(err, config.ErrSettingNotFound) {
		return recorded(Text("Couldn't find a setting called '%s'.", name), userLine), nil
	}
	if err != nil {
		return recorded(Text("%s", err.Error()), userLine), nil
	}

	if err := config.SaveConfig(rt.ConfigPath, rt.Config); err != nil {
		return Response{}, err
	}
	return recorded(Text("Setting '%s' has been set to '%s'.", path, value), userLine), nil
}

func resetConfigCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	name := firstArg(req)
	if name == "" {
		return recorded(Text("You need to provide a setting name to reset."),
			"Can you reset that setting to default?"), nil
	}

	userLine := fmt.Sprintf("Can you reset the setting '%s' to default?", name)
	path, err := rt.Config.ResetSetting(name)
	if errors.Is(err, config.ErrSettingNotFound) {
		return recorded(Text("Couldn't find a setting called '%s'.", name), userLine), nil
	}
	if err != nil {
		return Response{}, err
	}

	if err := config.SaveConfig(rt.ConfigPath, rt.Config); err != nil {
		return Response{}, err
	}
	return recorded(Text("Setting '%s' has been reset to default.", path), userLine), nil
}

func configListCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	var lines []string
	for _, path := range rt.Config.SettingPaths() {
		setting, err := rt.Config.FindSetting(path)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", path, setting.Display()))
	}
	return Text("Here is a list of all available settings: \n-- %s",
		strings.Join(lines, "\n-- ")), nil
}

func addAdminCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you make this person an admin?"

	userID := firstArg(req)
	if userID == "" {
		return recorded(Text("Who do you want me to make an admin?"), userLine), nil
	}

	err := rt.Store.AddAdmin(req.Platform, userID, false)
	if errors.Is(err, store.ErrAlreadyAdmin) {
		return recorded(Text("The user ID '%s' is already on the admin list.", userID), userLine), nil
	}
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("Added new user ID '%s' to the admin list.", userID), userLine), nil
}

func delAdminCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you remove this person from the admin list?"

	userID := firstArg(req)
	if userID == "" {
		return recorded(Text("Who do you want me to remove from the admin list?"), userLine), nil
	}

	err := rt.Store.RemoveAdmin(req.Platform, userID)
	if errors.Is(err, store.ErrNotAdmin) {
		return recorded(Text("The user ID '%s' is not on the admin list.", userID), userLine), nil
	}
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("Removed user ID '%s' from the admin list.", userID), userLine), nil
}

func addWhitelistCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you add this chat ID to the whitelist?"

	chatID := firstArg(req)
	if chatID == "" {
		return recorded(Text("What chat ID do you want me to add to the whitelist?"), userLine), nil
	}

	err := rt.Store.AddWhitelist(req.Platform, chatID)
	if errors.Is(err, store.ErrAlreadyWhitelisted) {
		return recorded(Text("The chat ID '%s' is already on the whitelist.", chatID), userLine), nil
	}
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("Added new chat ID '%s' to the whitelist.", chatID), userLine), nil
}

func delWhitelistCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you remove this chat ID from the whitelist?"

	chatID := firstArg(req)
	if chatID == "" {
		return recorded(Text("What chat ID do you want me to remove from the whitelist?"), userLine), nil
	}

	err := rt.Store.RemoveWhitelist(req.Platform, chatID)
	if errors.Is(err, store.ErrNotWhitelisted) {
		return recorded(Text("The chat ID '%s' is not on the whitelist.", chatID), userLine), nil
	}
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("Removed chat ID '%s' from the whitelist.", chatID), userLine), nil
}

func getUserIDCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	username := firstArg(req)
	if username == "" {
		return recorded(Text("Your user ID is %s.", req.SenderID),
			"Can you tell me what my user ID is?"), nil
	}

	userLine := fmt.Sprintf("What is %s's user ID?", username)
	userID, err := rt.Stats.LookupUserID(ctx, req.Platform, username)
	if err != nil {
		return recorded(Text("%s's user ID has not been tracked.", username), userLine), nil
	}
	return recorded(Text("%s's user ID is %s.", username, userID), userLine), nil
}

func getChatIDCommand(ctx context.Context, req Request) (Response, error) {
	return recorded(Text("This chat's ID is %s", req.ChatID),
		"Can you tell me what this chat's ID is?"), nil
}
