package cli

// Command is a playback action bound to a key.
type Command int

const (
	CmdNone Command = iota
	CmdForward
	CmdBackward
	CmdToggle
	CmdFaster
	CmdSlower
	CmdRebuild
	CmdHelp
	CmdQuit
)

const keyHelp = "n/→ next   p/← previous   space play/pause   +/- speed   b rebuild   ? help   q quit"

var keyBindings = map[byte]Command{
	'n':  CmdForward,
	'l':  CmdForward,
	'p':  CmdBackward,
	'h':  CmdBackward,
	' ':  CmdToggle,
	'+':  CmdFaster,
	'=':  CmdFaster,
	'-':  CmdSlower,
	'_':  CmdSlower,
	'b':  CmdRebuild,
	'r':  CmdRebuild,
	'?':  CmdHelp,
	'q':  CmdQuit,
	0x03: CmdQuit, // Ctrl+C in raw mode
	0x04: CmdQuit, // Ctrl+D
}

// ParseKeys decodes a chunk of terminal input into commands.
// Arrow keys arrive as the escape sequences ESC [ C and ESC [ D.
// Unbound bytes are dropped.
func ParseKeys(b []byte) []Command {
	var cmds []Command
	for i := 0; i < len(b); i++ {
		if b[i] == 0x1b && i+2 < len(b) && b[i+1] == '[' {
			switch b[i+2] {
			case 'C':
				cmds = append(cmds, CmdForward)
			case 'D':
				cmds = append(cmds, CmdBackward)
			case 'A':
				cmds = append(cmds, CmdFaster)
			case 'B':
				cmds = append(cmds, CmdSlower)
			}
			i += 2
			continue
		}
		if cmd, ok := keyBindings[b[i]]; ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}
