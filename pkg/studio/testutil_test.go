package studio

// Shared template fixtures used across the package tests.

func smartDBTemplate() NodeData {
	return NodeData{
		TemplateID: "smartDB",
		Label:      "SmartDB",
		Category:   "Data Sources",
		Color:      "#10b981",
		Inputs: []Field{
			{Name: "base_url", DisplayName: "Base URL", Type: "str", Required: true},
			{Name: "api_key", DisplayName: "API Key", Type: "password", Required: true},
			{Name: "project_id", DisplayName: "Project", Type: "dropdown"},
			{Name: "table_id", DisplayName: "Table", Type: "dropdown"},
		},
		Outputs: []Output{{Name: "records", Type: "Data"}},
	}
}

func agentTemplate() NodeData {
	return NodeData{
		TemplateID: "agent",
		Label:      "Agent",
		Category:   "AI",
		Color:      "#8b5cf6",
		Inputs: []Field{
			{Name: "prompt", DisplayName: "Prompt", Type: "str"},
			{Name: "model", DisplayName: "Model", Type: "dropdown",
				Options: []Option{{Label: "gpt-4o", Value: "gpt-4o"}}},
			{Name: "credential", DisplayName: "Credential", Type: "credentials"},
			{Name: "context", DisplayName: "Context", Type: "Data"},
		},
		Outputs: []Output{{Name: "response", Type: "Text"}},
	}
}

func outputTemplate() NodeData {
	return NodeData{
		TemplateID: "output",
		Label:      "Output",
		Category:   "IO",
		Inputs: []Field{
			{Name: "text", DisplayName: "Text", Type: "Text"},
			{Name: "anything", DisplayName: "Anything"},
		},
	}
}

// twoNodeStore returns a store holding a smartDB node wired into an
// agent node, plus both node ids.
func twoNodeStore() (*Store, string, string) {
	s := NewStore()
	src := NewNode(smartDBTemplate(), Position{X: 100, Y: 100})
	dst := NewNode(agentTemplate(), Position{X: 400, Y: 100})
	s.AddNode(src)
	s.AddNode(dst)
	_, _ = s.Connect(Connection{
		Source: src.ID, SourceHandle: "records",
		Target: dst.ID, TargetHandle: "context",
	})
	return s, src.ID, dst.ID
}
