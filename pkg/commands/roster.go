package commands

// Builtins returns a registry holding the full built-in command set. The
// same roster runs on every platform; Discord-only commands carry a
// Platforms restriction instead of a separate table.
func Builtins() *Registry {
	reg := NewRegistry()

	discordOnly := []string{"discord"}

	defs := []*Definition{
		// Sound library
		{Name: "sound", Description: "Play a sound effect", Usage: "/sound [name]", Handler: soundCommand},
		{Name: "random", Description: "Play a random sound effect", Handler: randomSoundCommand},
		{Name: "soundlist", Description: "List every available sound", Handler: soundListCommand},
		{Name: "playcount", Description: "Show a sound's playcount in this chat", Usage: "/playcount [name]", Handler: playcountCommand},
		{Name: "topsounds", Description: "Most played sounds in this chat", Handler: topSoundsCommand},
		{Name: "botsounds", Description: "Least played sounds in this chat", Handler: botSoundsCommand},
		{Name: "globalplaycount", Description: "Show a sound's playcount across all chats", Usage: "/globalplaycount [name]", Handler: globalPlaycountCommand},
		{Name: "globaltopsounds", Description: "Most played sounds across all chats", Handler: globalTopSoundsCommand},
		{Name: "globalbotsounds", Description: "Least played sounds across all chats", Handler: globalBotSoundsCommand},
		{Name: "newsounds", Description: "Sounds never played in this chat", Handler: newSoundsCommand},
		{Name: "addsound", Description: "Upload a new sound", Usage: "/addsound [name] (attach audio)", Permission: PermAdmin, Handler: addSoundCommand},
		{Name: "delsound", Description: "Delete a sound", Usage: "/delsound [name]", Permission: PermSuperadmin, Handler: delSoundCommand},
		{Name: "adjvolume", Description: "Adjust a sound's volume", Usage: "/adjvolume [name] [decibels]", Permission: PermAdmin, Handler: adjVolumeCommand},
		{Name: "addalias", Description: "Add an alias for a sound", Usage: "/addalias [alias] [name]", Permission: PermAdmin, Handler: addAliasCommand},
		{Name: "delalias", Description: "Remove a sound alias", Usage: "/delalias [alias]", Permission: PermAdmin, Handler: delAliasCommand},
		{Name: "getalias", Description: "List a sound's aliases", Usage: "/getalias [name]", Handler: getAliasCommand},
		{Name: "search", Description: "Search sound names", Usage: "/search [text]", Handler: searchCommand},

		// Dice
		{Name: "roll", Aliases: []string{"dice"}, Description: "Roll dice in NdM notation", Usage: "/roll 3d6+2", Handler: rollCommand},
		{Name: "statroll", Description: "Roll a tabletop stat block", Usage: "/statroll [dnd|coc|mythras]", Handler: statRollCommand},
		{Name: "d10000", Description: "Draw a random effect from the d10000 table", Handler: d10000Command},
		{Name: "effects", Description: "List your active d10000 effects", Handler: effectsCommand},
		{Name: "reseteffects", Description: "Clear your active d10000 effects", Handler: resetEffectsCommand},

		// Trivia
		{Name: "trivia", Description: "Start or repeat the chat's trivia question", Handler: triviaCommand},
		{Name: "guess", Description: "Answer the active trivia question", Usage: "/guess [answer or letter]", Handler: guessCommand},
		{Name: "triviarank", Description: "Show the chat's trivia scoreboard", Handler: triviaRankCommand},

		// Chat & AI
		{Name: "chat", Description: "Talk to the bot", Usage: "/chat [message]", Handler: chatCommand},
		{Name: "say", Description: "Speak a phrase as a voice message", Usage: "/say [text]", Handler: sayCommand},
		{Name: "wisdom", Description: "Generate markov wisdom", Handler: wisdomCommand},
		{Name: "buildmarkov", Description: "Rebuild the markov chain from the conversation memory", Permission: PermAdmin, Handler: buildMarkovCommand},
		{Name: "lobotomize", Description: "Wipe the conversation memory", Permission: PermAdmin, Handler: lobotomizeCommand},
		{Name: "memory", Description: "Dump the conversation memory as a file", Permission: PermAdmin, Handler: memoryCommand},
		{Name: "addresponse", Description: "Add a line to the response list", Usage: "/addresponse [text]", Permission: PermSuperadmin, Handler: addResponseCommand},

		// Voice channels
		{Name: "vcjoin", Description: "Join your voice channel", Platforms: discordOnly, Handler: vcJoinCommand},
		{Name: "vcleave", Description: "Leave the voice channel", Platforms: discordOnly, Handler: vcLeaveCommand},
		{Name: "vcsound", Description: "Play a sound in the voice channel", Usage: "/vcsound [name]", Platforms: discordOnly, Handler: vcSoundCommand},
		{Name: "vcrandom", Description: "Play a random sound in the voice channel", Platforms: discordOnly, Handler: vcRandomCommand},
		{Name: "vcsay", Description: "Speak a phrase in the voice channel", Usage: "/vcsay [text]", Platforms: discordOnly, Handler: vcSayCommand},
		{Name: "vcstream", Description: "Stream audio from a URL in the voice channel", Usage: "/vcstream [url]", Platforms: discordOnly, Handler: vcStreamCommand},
		{Name: "vcstop", Description: "Stop voice playback", Platforms: discordOnly, Handler: vcStopCommand},
		{Name: "vcpause", Description: "Toggle pause on voice playback", Platforms: discordOnly, Handler: vcPauseCommand},

		// Admin & ops
		{Name: "help", Description: "Show the command overview", Handler: helpCommand},
		{Name: "mycommands", Description: "List the commands you have access to", Handler: myCommandsCommand},
		{Name: "pressf", Description: "Pay respects", Handler: pressFCommand},
		{Name: "getfile", Description: "Send a file from the bot's server", Usage: "/getfile [path]", Permission: PermSuperadmin, Handler: getFileCommand},
		{Name: "version", Description: "Show the running version", Permission: PermAdmin, Handler: versionCommand},
		{Name: "system", Description: "Show process resource usage", Permission: PermAdmin, Handler: systemCommand},
		{Name: "logs", Description: "Send the log file", Permission: PermAdmin, Handler: logsCommand},
		{Name: "clearlogs", Description: "Truncate the log file", Permission: PermSuperadmin, Handler: clearLogsCommand},
		{Name: "restart", Description: "Restart the bot", Permission: PermSuperadmin, Handler: restartCommand},
		{Name: "crash", Description: "Raise an intentional error", Permission: PermSuperadmin, Handler: crashCommand},
		{Name: "getconfig", Description: "Show a config setting", Usage: "/getconfig [setting]", Permission: PermAdmin, Handler: getConfigCommand},
		{Name: "setconfig", Description: "Change a config setting", Usage: "/setconfig [setting] [value]", Permission: PermSuperadmin, Handler: setConfigCommand},
		{Name: "resetconfig", Description: "Reset a config setting to default", Usage: "/resetconfig [setting]", Permission: PermAdmin, Handler: resetConfigCommand},
		{Name: "configlist", Description: "List all config settings", Permission: PermAdmin, Handler: configListCommand},
		{Name: "addadmin", Description: "Add a user to the admin list", Usage: "/addadmin [user id]", Permission: PermSuperadmin, Handler: addAdminCommand},
		{Name: "deladmin", Description: "Remove a user from the admin list", Usage: "/deladmin [user id]", Permission: PermSuperadmin, Handler: delAdminCommand},
		{Name: "addwhitelist", Description: "Whitelist a chat", Usage: "/addwhitelist [chat id]", Permission: PermSuperadmin, Handler: addWhitelistCommand},
		{Name: "delwhitelist", Description: "Remove a chat from the whitelist", Usage: "/delwhitelist [chat id]", Permission: PermSuperadmin, Handler: delWhitelistCommand},
		{Name: "getuserid", Description: "Look up a user ID", Usage: "/getuserid [username]", Permission: PermAdmin, Handler: getUserIDCommand},
		{Name: "getchatid", Description: "Show this chat's ID", Permission: PermAdmin, Handler: getChatIDCommand},
	}

	for _, def := range defs {
		reg.MustRegister(def)
	}
	return reg
}
