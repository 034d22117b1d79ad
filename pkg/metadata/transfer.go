package metadata

import (
	"fmt"
	"path"
	"strings"

	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

// TransferCommand is one ready-to-paste shell command for fetching a
// dataset's data.
type TransferCommand struct {
	Method  string
	Command string
}

// TransferCommands derives download commands from a dataset's server,
// protocols and location extras.
//
// Local datasets (server "local", or no protocols recorded) yield a single
// "local" entry stating there is nothing to download. When username is
// empty, the placeholder <username> is inserted.
func TransferCommands(ds ckan.Dataset, username string, dest string) []TransferCommand {
	extras := ds.ExtrasAsMap()

	server := extras[ckan.KeyServer]
	location := extras[ckan.KeyLocation]

	protocols := parseProtocols(extras)

	if server == "local" || len(protocols) == 0 {
		return []TransferCommand{{Method: "local", Command: "No download"}}
	}

	if username == "" {
		username = "<username>"
	}
	if dest == "" {
		dest = "."
	}

	normPath := location
	if location != "" && !strings.HasPrefix(location, "http") {
		normPath = path.Clean(location)
	}

	commands := []TransferCommand{}

	if hasProtocol(protocols, "ssh") || hasProtocol(protocols, "scp") {
		commands = append(commands, TransferCommand{
			Method:  "scp",
			Command: fmt.Sprintf("scp %s@%s:%s %s", username, server, normPath, dest),
		})
	}

	if hasProtocol(protocols, "rsync") {
		commands = append(commands, TransferCommand{
			Method:  "rsync",
			Command: fmt.Sprintf("rsync -avz %s@%s:%s %s", username, server, normPath, dest),
		})
	}

	if hasProtocol(protocols, "webdav") {
		commands = append(commands,
			TransferCommand{
				Method:  "webdav curl",
				Command: fmt.Sprintf("curl -L -u %s -O %q", username, location),
			},
			TransferCommand{
				Method:  "webdav wget",
				Command: fmt.Sprintf("wget --user=%s --ask-password %q", username, location),
			},
		)
	}

	return commands
}

// parseProtocols reads the protocols extra (or a legacy singular protocol
// extra), accepting both a JSON list and a bare protocol name.
func parseProtocols(extras map[string]string) []string {
	raw, ok := extras[ckan.KeyProtocols]
	if !ok || raw == "" {
		raw = extras["protocol"]
	}
	if raw == "" {
		return nil
	}

	switch parsed := DecodeExtraValue(raw).(type) {
	case []any:
		protocols := []string{}
		for _, p := range parsed {
			if s, ok := p.(string); ok {
				protocols = append(protocols, s)
			}
		}
		return protocols
	case string:
		return []string{parsed}
	default:
		return []string{raw}
	}
}

func hasProtocol(protocols []string, name string) bool {
	for _, p := range protocols {
		if p == name {
			return true
		}
	}
	return false
}
