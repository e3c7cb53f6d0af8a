package orchestrator

import (
	"github.com/Cyclone1070/mia/internal/provider/model"
	"github.com/Cyclone1070/mia/internal/tool"
)

// toToolDefinitions converts tool declarations into the provider contract's
// definition type. The two mirror each other so that the provider packages
// never import the tool package.
func toToolDefinitions(decls []tool.Declaration) []model.ToolDefinition {
	if len(decls) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(decls))
	for _, d := range decls {
		defs = append(defs, model.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  toParameterSchema(d.Parameters),
		})
	}
	return defs
}

func toParameterSchema(s *tool.Schema) *model.ParameterSchema {
	if s == nil {
		return nil
	}
	out := &model.ParameterSchema{
		Type:     string(s.Type),
		Required: s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]model.PropertySchema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toPropertySchema(prop)
		}
	}
	return out
}

func toPropertySchema(s *tool.Schema) model.PropertySchema {
	p := model.PropertySchema{
		Type:        string(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
	}
	if s.Items != nil {
		items := toPropertySchema(s.Items)
		p.Items = &items
	}
	return p
}
