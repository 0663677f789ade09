package graphql

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/ramstk-analysis/pkg/allocation"
	"github.com/dd0wney/ramstk-analysis/pkg/analysis"
	"github.com/dd0wney/ramstk-analysis/pkg/audit"
	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
)

// Service is what the schema resolves against: the managers sharing one
// hardware tree and, optionally, the store results are saved to.
type Service struct {
	Allocation  *analysis.AllocationManager
	SimilarItem *analysis.SimilarItemManager
	Tree        *hardware.Tree
	Store       hardware.Store
	History     *audit.AuditLogger
	RevisionID  int
	Logger      logging.Logger

	// One calculation at a time; each mutates a node or its children.
	mu sync.Mutex
}

// save writes ids to the store when one is configured.
func (s *Service) save(ctx context.Context, ids ...int) error {
	if s.Store == nil {
		return nil
	}
	if err := analysis.SaveNodes(ctx, s.Store, s.RevisionID, s.Tree, ids...); err != nil {
		if s.Logger != nil {
			s.Logger.Error("failed to save results", logging.RevisionID(s.RevisionID), logging.Error(err))
		}
		return fmt.Errorf("calculated but not saved: %w", err)
	}
	return nil
}

// GenerateSchema builds the hardware schema:
//
//	query    { hardware(id) children(id) root health allocationOptions history }
//	mutation { calculateGoals allocate allocateTree calculateSimilarItem rollUpChangeDescriptions }
func GenerateSchema(svc *Service) (graphql.Schema, error) {
	if svc == nil || svc.Tree == nil || svc.Allocation == nil || svc.SimilarItem == nil {
		return graphql.Schema{}, fmt.Errorf("service is missing a tree or manager")
	}

	t := newTypes(svc.Tree)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"hardware": &graphql.Field{
				Type: t.hardware,
				Args: idArg(),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					n, err := svc.Tree.Get(p.Args["id"].(int))
					if err != nil {
						return nil, err
					}
					return nodeMap(&n), nil
				},
			},
			"root": &graphql.Field{
				Type: t.hardware,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					n, err := svc.Tree.Root()
					if err != nil {
						return nil, err
					}
					return nodeMap(&n), nil
				},
			},
			"children": &graphql.Field{
				Type: graphql.NewList(t.hardware),
				Args: idArg(),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return childMaps(svc.Tree, p.Args["id"].(int))
				},
			},
			"allocationOptions": &graphql.Field{
				Type: t.options,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return optionsMap(svc.Allocation.Options()), nil
				},
			},
			"history": &graphql.Field{
				Type: graphql.NewList(t.event),
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
					"nodeId": &graphql.ArgumentConfig{Type: graphql.Int},
					"action": &graphql.ArgumentConfig{Type: graphql.String},
					"status": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: historyResolver(svc),
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType(svc, t),
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func idArg() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
	}
}

type types struct {
	hardware   *graphql.Object
	failure    *graphql.Object
	allocation *graphql.Object
	treeResult *graphql.Object
	options    *graphql.Object
	event      *graphql.Object
}

func newTypes(tree *hardware.Tree) *types {
	t := &types{}

	t.hardware = graphql.NewObject(graphql.ObjectConfig{
		Name: "Hardware",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{
				"changeDescriptions": &graphql.Field{Type: graphql.NewList(graphql.String)},
				"changeFactors":      &graphql.Field{Type: graphql.NewList(graphql.Float)},
				"userFloats":         &graphql.Field{Type: graphql.NewList(graphql.Float)},
				"userInts":           &graphql.Field{Type: graphql.NewList(graphql.Int)},
				"functions":          &graphql.Field{Type: graphql.NewList(graphql.String)},
				"results":            &graphql.Field{Type: graphql.NewList(graphql.Float)},
				"children": &graphql.Field{
					Type: graphql.NewList(t.hardware),
					Resolve: func(p graphql.ResolveParams) (any, error) {
						return childMaps(tree, p.Source.(map[string]any)["id"].(int))
					},
				},
			}
			for _, name := range intFields {
				fields[name] = &graphql.Field{Type: graphql.Int}
			}
			for _, name := range floatFields {
				fields[name] = &graphql.Field{Type: graphql.Float}
			}
			fields["name"] = &graphql.Field{Type: graphql.String}
			return fields
		}),
	})

	t.failure = graphql.NewObject(graphql.ObjectConfig{
		Name: "AllocationFailure",
		Fields: graphql.Fields{
			"nodeId":  &graphql.Field{Type: graphql.Int},
			"method":  &graphql.Field{Type: graphql.String},
			"reason":  &graphql.Field{Type: graphql.String},
			"message": &graphql.Field{Type: graphql.String},
		},
	})

	t.allocation = graphql.NewObject(graphql.ObjectConfig{
		Name: "AllocationResult",
		Fields: graphql.Fields{
			"parentId": &graphql.Field{Type: graphql.Int},
			"method":   &graphql.Field{Type: graphql.String},
			"chaining": &graphql.Field{Type: graphql.String},
			"children": &graphql.Field{Type: graphql.NewList(t.hardware)},
			"failures": &graphql.Field{Type: graphql.NewList(t.failure)},
		},
	})

	t.treeResult = graphql.NewObject(graphql.ObjectConfig{
		Name: "AllocateTreeResult",
		Fields: graphql.Fields{
			"allocated": &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"failures":  &graphql.Field{Type: graphql.NewList(t.failure)},
		},
	})

	t.options = graphql.NewObject(graphql.ObjectConfig{
		Name: "AllocationOptions",
		Fields: graphql.Fields{
			"chaining": &graphql.Field{Type: graphql.String},
		},
	})

	t.event = graphql.NewObject(graphql.ObjectConfig{
		Name: "CalculationEvent",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"timestamp": &graphql.Field{Type: graphql.String},
			"action":    &graphql.Field{Type: graphql.String},
			"nodeId":    &graphql.Field{Type: graphql.Int},
			"status":    &graphql.Field{Type: graphql.String},
			"message":   &graphql.Field{Type: graphql.String},
		},
	})

	return t
}

// historyResolver returns the newest matching events first. Without a
// history it returns an empty list.
func historyResolver(svc *Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if svc.History == nil {
			return []map[string]any{}, nil
		}
		limit, _ := p.Args["limit"].(int)
		if limit < 0 {
			return nil, fmt.Errorf("limit: must be at least 0")
		}

		filter := &audit.Filter{}
		if v, ok := p.Args["nodeId"].(int); ok {
			filter.NodeID = v
		}
		if v, ok := p.Args["action"].(string); ok {
			filter.Action = audit.Action(v)
		}
		if v, ok := p.Args["status"].(string); ok {
			filter.Status = audit.Status(v)
		}

		events := svc.History.GetEvents(filter)
		out := make([]map[string]any, 0, min(limit, len(events)))
		for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
			e := events[i]
			out = append(out, map[string]any{
				"id":        e.ID,
				"timestamp": e.Timestamp.Format(time.RFC3339Nano),
				"action":    string(e.Action),
				"nodeId":    e.NodeID,
				"status":    string(e.Status),
				"message":   e.Message,
			})
		}
		return out, nil
	}
}

var intFields = []string{
	"id", "parentId", "revisionId", "goalMeasureId", "allocationMethodId",
	"nSubSystems", "nSubElements", "intFactor", "soaFactor", "opTimeFactor",
	"envFactor", "similarItemMethodId", "environmentFromId", "environmentToId",
	"qualityFromId", "qualityToId",
}

var floatFields = []string{
	"hazardRateActive", "reliabilityGoal", "hazardRateGoal", "mtbfGoal",
	"missionTime", "dutyCycle", "weightFactor", "percentWeightFactor",
	"reliabilityAlloc", "hazardRateAlloc", "mtbfAlloc", "temperatureFrom",
	"temperatureTo",
}

// nodeMap renders n for the default resolver.
func nodeMap(n *hardware.Node) map[string]any {
	return map[string]any{
		"id":                  n.ID,
		"parentId":            n.ParentID,
		"revisionId":          n.RevisionID,
		"name":                n.Name,
		"hazardRateActive":    n.HazardRateActive,
		"goalMeasureId":       n.GoalMeasureID,
		"reliabilityGoal":     n.ReliabilityGoal,
		"hazardRateGoal":      n.HazardRateGoal,
		"mtbfGoal":            n.MTBFGoal,
		"allocationMethodId":  n.AllocationMethodID,
		"missionTime":         n.MissionTime,
		"dutyCycle":           n.DutyCycle,
		"nSubSystems":         n.NSubSystems,
		"nSubElements":        n.NSubElements,
		"intFactor":           n.IntFactor,
		"soaFactor":           n.SOAFactor,
		"opTimeFactor":        n.OpTimeFactor,
		"envFactor":           n.EnvFactor,
		"weightFactor":        n.WeightFactor,
		"percentWeightFactor": n.PercentWeightFactor,
		"reliabilityAlloc":    n.ReliabilityAlloc,
		"hazardRateAlloc":     n.HazardRateAlloc,
		"mtbfAlloc":           n.MTBFAlloc,
		"similarItemMethodId": n.SimilarItemMethodID,
		"environmentFromId":   n.EnvironmentFromID,
		"environmentToId":     n.EnvironmentToID,
		"qualityFromId":       n.QualityFromID,
		"qualityToId":         n.QualityToID,
		"temperatureFrom":     n.TemperatureFrom,
		"temperatureTo":       n.TemperatureTo,
		"changeDescriptions":  n.ChangeDescriptions[:],
		"changeFactors":       n.ChangeFactors[:],
		"userFloats":          n.UserFloats[:],
		"userInts":            n.UserInts[:],
		"functions":           n.Functions[:],
		"results":             n.Results[:],
	}
}

func childMaps(tree *hardware.Tree, id int) ([]map[string]any, error) {
	children, err := tree.Children(id)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(children))
	for i := range children {
		out[i] = nodeMap(&children[i])
	}
	return out, nil
}

func failureMaps(failures []allocation.Failure) []map[string]any {
	out := make([]map[string]any, len(failures))
	for i, f := range failures {
		out[i] = map[string]any{
			"nodeId":  f.NodeID,
			"method":  f.Method.String(),
			"reason":  string(f.Reason),
			"message": f.Message,
		}
	}
	return out
}

func optionsMap(o allocation.Options) map[string]any {
	return map[string]any{"chaining": o.Chaining.String()}
}
