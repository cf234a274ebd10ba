package steps

type entry struct {
	name string
	step Step
}

var pipeline = []entry{
	{"context", &ContextStep{}},
	{"hours", &HoursStep{}},
	{"period", &PeriodStep{}},
	{"gross", &GrossStep{}},
	{"contributions", &ContributionsStep{}},
	{"reduction", &ReductionStep{}},
	{"net", &NetStep{}},
	{"cumuls", &CumulsStep{}},
	{"payslip", &PayslipStep{}},
}

// Names lists the steps in execution order.
func Names() []string {
	names := make([]string, len(pipeline))
	for i, e := range pipeline {
		names[i] = e.name
	}
	return names
}

func Get(name string) (Step, bool) {
	for _, e := range pipeline {
		if e.name == name {
			return e.step, true
		}
	}
	return nil, false
}
