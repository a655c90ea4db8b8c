package script

// unitFile is the on-disk structure of a unit source.
type unitFile struct {
	Package     string            `yaml:"package"`
	Imports     []string          `yaml:"imports"`
	Class       string            `yaml:"class"`
	Constants   map[string]string `yaml:"constants"`
	Nested      []nestedDTO       `yaml:"nested"`
	Annotations []annotationDTO   `yaml:"annotations"`
	Init        []statementDTO    `yaml:"init"`
}

type nestedDTO struct {
	Class     string            `yaml:"class"`
	Constants map[string]string `yaml:"constants"`
	Nested    []nestedDTO       `yaml:"nested"`
}

type annotationDTO struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// statementDTO holds exactly one of its fields.
type statementDTO struct {
	New       string `yaml:"new"`
	ClassName string `yaml:"classname"`
	Print     string `yaml:"print"`
}

// importsOnly is decoded by the reference extractor, which ignores the body.
type importsOnly struct {
	Imports []string `yaml:"imports"`
}
