package commands

import "math/rand"

// Canned persona texts. The bot answers failures in character instead of
// leaking raw errors to chat.
const errorText = "*BZZZT* my telecommunication circuits *BZZZT* appear to be *BZZZT* malfunctioning *BZZZT*"

var noPermissionTexts = []string{
	"You don't have the right, O you don't have the right.",
	"You think I'd let just anyone do this?",
}

var soundNotProvidedTexts = []string{
	"I'm afraid my mindreader unit has been malfunctioning lately, what sound did you want?",
	"Use your words please.",
	"I unfortunately do not have any sounds without a name.",
}

var soundNotFoundTexts = []string{
	"Are you insane, do you have any idea how dangerous a sound with that name would be?",
	"I wouldn't be caught dead with a sound like that on my list.",
	"No dice. Someone probably forgot to upload it, what a fool.",
}

var soundRefusalTexts = []string{
	"You know, I'm just not feeling it right now.",
	"Nope.",
	"Ask me again later.",
}

func pickText(texts []string) string {
	return texts[rand.Intn(len(texts))]
}
