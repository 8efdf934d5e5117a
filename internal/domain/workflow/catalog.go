package workflow

import "errors"

// ErrNotFound is returned when a workflow definition does not exist.
var ErrNotFound = errors.New("workflow not found")

// Catalog holds the available workflow definitions. Definitions are
// static content; the catalog never mutates them after construction.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// NewCatalog builds a catalog from the given definitions.
func NewCatalog(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*Definition)}
	for _, d := range defs {
		if err := Validate(d); err != nil {
			return nil, err
		}
		if _, ok := c.defs[d.ID]; ok {
			return nil, errors.New("duplicate workflow id: " + d.ID)
		}
		c.defs[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

// Get returns the definition for an id.
func (c *Catalog) Get(id string) (*Definition, error) {
	d, ok := c.defs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// List returns definitions in registration order, optionally filtered by
// category. An empty or "all" category returns everything.
func (c *Catalog) List(category string) []*Definition {
	out := make([]*Definition, 0, len(c.order))
	for _, id := range c.order {
		d := c.defs[id]
		if category != "" && category != "all" && d.Category != category {
			continue
		}
		out = append(out, d)
	}
	return out
}

// BuiltinCatalog returns the catalog of government-service workflows
// shipped with the app.
func BuiltinCatalog() *Catalog {
	c, err := NewCatalog(aadhaarApplication(), panApplication(), passportApplication())
	if err != nil {
		panic(err)
	}
	return c
}

func aadhaarApplication() *Definition {
	return &Definition{
		ID:            "aadhaar-application",
		Name:          "Aadhaar Card Application",
		Description:   "Apply for new Aadhaar card",
		Category:      "identity",
		EstimatedTime: "15 minutes",
		Difficulty:    "easy",
		Steps: []Step{
			{Index: 1, Type: StepInfo, Key: "welcome", Title: "Welcome to Aadhaar Application",
				Prompt: "Welcome to Aadhaar card application. I will guide you through the process step by step."},
			{Index: 2, Type: StepAsk, Key: "ask_name", Title: "Full Name",
				Prompt: "What is your full name as it should appear on the Aadhaar card?", Validation: RuleRequired},
			{Index: 3, Type: StepAsk, Key: "ask_age", Title: "Age",
				Prompt: "What is your age?", Validation: RuleNumber, Expression: "value >= 1 && value <= 120"},
			{Index: 4, Type: StepOCR, Key: "scan_address_proof", Title: "Address Proof",
				Prompt: "Please scan your address proof document", DocumentType: "address_proof"},
			{Index: 5, Type: StepConfirm, Key: "confirm_details", Title: "Confirm Details",
				Prompt: "Please review all information and confirm"},
			{Index: 6, Type: StepSubmit, Key: "submit_application", Title: "Submit Application",
				Prompt: "Submitting your Aadhaar application..."},
		},
	}
}

func panApplication() *Definition {
	return &Definition{
		ID:            "pan-application",
		Name:          "PAN Card Application",
		Description:   "Apply for new PAN card",
		Category:      "tax",
		EstimatedTime: "10 minutes",
		Difficulty:    "easy",
		Steps: []Step{
			{Index: 1, Type: StepInfo, Key: "welcome", Title: "PAN Application",
				Prompt: "Let's help you apply for a PAN card"},
			{Index: 2, Type: StepAsk, Key: "ask_name", Title: "Full Name",
				Prompt: "What is your full name as per documents?", Validation: RuleRequired},
			{Index: 3, Type: StepAsk, Key: "ask_father_name", Title: "Father's Name",
				Prompt: "What is your father's name?", Validation: RuleRequired},
			{Index: 4, Type: StepOCR, Key: "scan_identity_proof", Title: "Identity Proof",
				Prompt: "Please scan your identity proof", DocumentType: "identity_proof"},
			{Index: 5, Type: StepSubmit, Key: "submit_application", Title: "Submit Application",
				Prompt: "Submitting your PAN application..."},
		},
	}
}

func passportApplication() *Definition {
	return &Definition{
		ID:            "passport-application",
		Name:          "Passport Application",
		Description:   "Apply for new passport",
		Category:      "travel",
		EstimatedTime: "25 minutes",
		Difficulty:    "medium",
		Steps: []Step{
			{Index: 1, Type: StepInfo, Key: "welcome", Title: "Passport Application",
				Prompt: "Let's help you apply for a passport"},
			{Index: 2, Type: StepAsk, Key: "ask_name", Title: "Full Name",
				Prompt: "What is your full name?", Validation: RuleRequired},
			{Index: 3, Type: StepAsk, Key: "ask_email", Title: "Email Address",
				Prompt: "What is your email address?", Validation: RuleEmail},
			{Index: 4, Type: StepAsk, Key: "ask_birth_place", Title: "Place of Birth",
				Prompt: "Where were you born?", Validation: RuleRequired},
			{Index: 5, Type: StepOCR, Key: "scan_identity_proof", Title: "Identity Proof",
				Prompt: "Please scan your identity proof", DocumentType: "identity_proof"},
			{Index: 6, Type: StepConfirm, Key: "confirm_details", Title: "Confirm Details",
				Prompt: "Please review all information and confirm"},
			{Index: 7, Type: StepSubmit, Key: "submit_application", Title: "Submit Application",
				Prompt: "Submitting your passport application..."},
		},
	}
}
