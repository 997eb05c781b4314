// Package invocation builds the two command lines of a trial run: the
// preview that carries the dry-run flag and the real one that does not.
package invocation

// Plan holds the pieces both invocations are assembled from. The dry-run
// flag sits between the base command and the forwarded arguments so that
// subcommand-style tools (`p4 revert -n`, `git clean -n`) see it where
// they expect an option.
type Plan struct {
	Base       []string
	DryRunFlag string
	Args       []string
}

// New returns a Plan over copies of base and args, so later mutation of
// the caller's slices cannot make the two invocations drift apart.
func New(base []string, dryRunFlag string, args []string) Plan {
	return Plan{
		Base:       append([]string(nil), base...),
		DryRunFlag: dryRunFlag,
		Args:       append([]string(nil), args...),
	}
}

// DryRun returns Base + DryRunFlag + Args.
func (p Plan) DryRun() []string {
	argv := make([]string, 0, len(p.Base)+1+len(p.Args))
	argv = append(argv, p.Base...)
	argv = append(argv, p.DryRunFlag)
	return append(argv, p.Args...)
}

// Real returns Base + Args.
func (p Plan) Real() []string {
	argv := make([]string, 0, len(p.Base)+len(p.Args))
	argv = append(argv, p.Base...)
	return append(argv, p.Args...)
}

// Program is the executable name both invocations start.
func (p Plan) Program() string {
	if len(p.Base) == 0 {
		return ""
	}
	return p.Base[0]
}
