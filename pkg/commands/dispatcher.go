package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glitchlabs/glitchbot/pkg/logger"
)

type Result struct {
	// Matched is false for non-commands and unknown commands; both fall
	// through to the passive replier. Unknown commands are never answered.
	Matched  bool
	Command  string
	Response Response
	Err      error
}

// Dispatcher resolves inbound command lines and runs their handlers with
// permission checks and panic containment.
type Dispatcher struct {
	reg *Registry
	rt  *Runtime
}

func NewDispatcher(reg *Registry, rt *Runtime) *Dispatcher {
	return &Dispatcher{reg: reg, rt: rt}
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	cmdName, args, ok := parseCommandLine(req.Text)
	if !ok {
		return Result{}
	}

	def, err := d.reg.Resolve(cmdName)
	if errors.Is(err, ErrCommandNotFound) {
		// Unknown commands stay silent on every platform.
		logger.DebugCF("commands", "Unknown command ignored", map[string]any{
			"command": cmdName, "platform": req.Platform,
		})
		return Result{}
	}

	req.Args = args

	if !def.availableOn(req.Platform) {
		return Result{
			Matched:  true,
			Command:  def.Name,
			Response: Text("Command /%s only works on %s.", def.Name, strings.Join(def.Platforms, " and ")),
		}
	}

	if denied := d.checkPermission(def, req); denied != nil {
		logger.InfoCF("commands", "Permission denied", map[string]any{
			"command": def.Name, "platform": req.Platform, "sender": req.SenderID,
		})
		return Result{Matched: true, Command: def.Name, Response: *denied}
	}

	resp, err := d.invoke(ctx, def, req)
	if err != nil {
		logger.ErrorCF("commands", "Command failed", map[string]any{
			"command": def.Name, "platform": req.Platform, "error": err.Error(),
		})
		return Result{Matched: true, Command: def.Name, Response: Text("%s", errorText), Err: err}
	}

	resp.truncateText(d.rt.Config.Bot.MaxMessageLength)
	return Result{Matched: true, Command: def.Name, Response: resp}
}

// checkPermission returns the denial response, or nil when the caller may
// proceed. The handler is never invoked on denial.
func (d *Dispatcher) checkPermission(def *Definition, req Request) *Response {
	if def.Permission == PermEveryone {
		return nil
	}
	if !d.rt.Config.Bot.RequireAdmin {
		return nil
	}

	allowed := false
	switch def.Permission {
	case PermAdmin:
		allowed = d.rt.Store.IsAdmin(req.Platform, req.SenderID)
	case PermSuperadmin:
		allowed = d.rt.Store.IsSuperadmin(req.Platform, req.SenderID)
	}
	if allowed {
		return nil
	}
	denial := Text("%s", pickText(noPermissionTexts))
	return &denial
}

// invoke runs the handler with the runtime on the context and converts
// panics into errors so one bad handler cannot take the router down.
func (d *Dispatcher) invoke(ctx context.Context, def *Definition, req Request) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{}
			err = fmt.Errorf("handler /%s panicked: %v", def.Name, r)
		}
	}()
	return def.Handler(WithRuntime(ctx, d.rt), req)
}

// parseCommandLine splits "/name@bot arg1 arg2" into the command name and
// its arguments. The bot mention suffix is dropped.
func parseCommandLine(input string) (string, []string, bool) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), fields[1:], true
}
