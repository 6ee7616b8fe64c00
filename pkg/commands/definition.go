package commands

import "context"

// Permission is the minimum role a caller needs to run a command.
type Permission int

const (
	PermEveryone Permission = iota
	PermAdmin
	PermSuperadmin
)

func (p Permission) String() string {
	switch p {
	case PermAdmin:
		return "admin"
	case PermSuperadmin:
		return "superadmin"
	default:
		return "everyone"
	}
}

type Handler func(ctx context.Context, req Request) (Response, error)

type Definition struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Permission  Permission
	// Platforms restricts where the command runs ("discord", "telegram").
	// Empty means everywhere. Restricted commands still resolve on other
	// platforms and reply with a rejection notice.
	Platforms []string
	Handler   Handler
}

func (d *Definition) availableOn(platform string) bool {
	if len(d.Platforms) == 0 {
		return true
	}
	for _, p := range d.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}
