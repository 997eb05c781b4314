package config

import "path/filepath"

// DefaultDryRunFlag is used when neither the command line nor the settings
// name a flag.
const DefaultDryRunFlag = "--dry-run"

// Settings is the merged content of every settings file that was loaded.
type Settings struct {
	Defaults Program
	Programs map[string]Program
}

// Program holds the settings that apply to one executable. Empty fields
// mean "not set here".
type Program struct {
	Option  string
	Verbose *bool
}

// NewSettings returns an empty, ready-to-merge Settings.
func NewSettings() *Settings {
	return &Settings{Programs: make(map[string]Program)}
}

// Resolve returns the dry-run flag and verbosity configured for program,
// matched by exact name first and then by base name. Unset fields fall back
// to the defaults block and then to DefaultDryRunFlag. A nil receiver
// behaves like empty settings.
func (s *Settings) Resolve(program string) (option string, verbose bool) {
	option = DefaultDryRunFlag
	if s == nil {
		return option, false
	}

	apply := func(p Program) {
		if p.Option != "" {
			option = p.Option
		}
		if p.Verbose != nil {
			verbose = *p.Verbose
		}
	}
	apply(s.Defaults)
	if p, ok := s.Programs[program]; ok {
		apply(p)
	} else if p, ok := s.Programs[filepath.Base(program)]; ok {
		apply(p)
	}
	return option, verbose
}

// Merge overlays other onto s. Fields set in other replace those in s.
func (s *Settings) Merge(other *Settings) {
	if other == nil {
		return
	}
	s.Defaults = Merged(s.Defaults, other.Defaults)
	for name, p := range other.Programs {
		s.Programs[name] = Merged(s.Programs[name], p)
	}
}

// Merged returns base with every field set in top replaced.
func Merged(base, top Program) Program {
	if top.Option != "" {
		base.Option = top.Option
	}
	if top.Verbose != nil {
		base.Verbose = top.Verbose
	}
	return base
}
