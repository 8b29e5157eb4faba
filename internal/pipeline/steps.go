package pipeline

// Step names reported in progress events
const (
	StepLoad    = "load"
	StepExtract = "extract"
	StepRewrite = "rewrite"
	StepSplice  = "splice"
	StepSave    = "save"
	StepCompile = "compile"
	StepPublish = "publish"
)

// Step categories
const (
	CategoryDocument  = "document"
	CategoryRewriting = "rewriting"
	CategoryCompile   = "compile"
	CategoryPublish   = "publish"
)

// StepDefinition describes one stage of a tailoring run
type StepDefinition struct {
	Name     string
	Category string
	Title    string
}

// Steps lists the stages in execution order. Extract, rewrite and splice
// repeat once per target section.
var Steps = []StepDefinition{
	{Name: StepLoad, Category: CategoryDocument, Title: "Loading resume"},
	{Name: StepExtract, Category: CategoryRewriting, Title: "Extracting section"},
	{Name: StepRewrite, Category: CategoryRewriting, Title: "Rewriting section"},
	{Name: StepSplice, Category: CategoryRewriting, Title: "Splicing section"},
	{Name: StepSave, Category: CategoryDocument, Title: "Saving resume"},
	{Name: StepCompile, Category: CategoryCompile, Title: "Compiling PDF"},
	{Name: StepPublish, Category: CategoryPublish, Title: "Publishing PDF"},
}

// StepNumber returns the 1-based position of a step, or 0 if unknown.
func StepNumber(name string) int {
	for i, s := range Steps {
		if s.Name == name {
			return i + 1
		}
	}
	return 0
}

// CategoryOf returns the category of a step.
func CategoryOf(name string) string {
	for _, s := range Steps {
		if s.Name == name {
			return s.Category
		}
	}
	return ""
}
