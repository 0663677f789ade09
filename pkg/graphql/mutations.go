package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/ramstk-analysis/pkg/allocation"
	"github.com/dd0wney/ramstk-analysis/pkg/analysis"
	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/similaritem"
	"github.com/dd0wney/ramstk-analysis/pkg/validation"
)

func mutationType(svc *Service, t *types) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"calculateGoals": &graphql.Field{
				Type: t.hardware,
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"measure":     &graphql.ArgumentConfig{Type: graphql.Int},
					"value":       &graphql.ArgumentConfig{Type: graphql.Float},
					"missionTime": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: calculateGoalsResolver(svc),
			},
			"allocate": &graphql.Field{
				Type: t.allocation,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"method":   &graphql.ArgumentConfig{Type: graphql.Int},
					"chaining": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: allocateResolver(svc),
			},
			"allocateTree": &graphql.Field{
				Type:    t.treeResult,
				Args:    idArg(),
				Resolve: allocateTreeResolver(svc),
			},
			"calculateSimilarItem": &graphql.Field{
				Type: t.hardware,
				Args: graphql.FieldConfigArgument{
					"id":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"method":    &graphql.ArgumentConfig{Type: graphql.Int},
					"functions": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: calculateSimilarItemResolver(svc),
			},
			"rollUpChangeDescriptions": &graphql.Field{
				Type:    t.hardware,
				Args:    idArg(),
				Resolve: rollUpResolver(svc),
			},
		},
	})
}

// calculateGoalsResolver optionally overrides the node's goal measure,
// goal value and mission time before deriving the other two goals.
func calculateGoalsResolver(svc *Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		req := validation.GoalRequest{NodeID: p.Args["id"].(int)}
		if v, ok := p.Args["measure"].(int); ok {
			req.Measure = v
		}
		value, hasValue := p.Args["value"].(float64)
		req.Value = value
		if v, ok := p.Args["missionTime"].(float64); ok {
			req.MissionTime = v
		}
		if err := validation.ValidateGoalRequest(&req); err != nil {
			return nil, err
		}
		if hasValue && req.Measure == 0 {
			return nil, fmt.Errorf("measure: required when value is given")
		}
		if hasValue && req.Measure == 1 && req.Value <= 0 {
			return nil, fmt.Errorf("value: reliability goal must be greater than 0, got %g", req.Value)
		}

		svc.mu.Lock()
		defer svc.mu.Unlock()

		restore, err := override(svc.Tree, req.NodeID, func(n *hardware.Node) {
			if req.Measure != 0 {
				n.GoalMeasureID = req.Measure
			}
			if hasValue {
				switch req.Measure {
				case 1:
					n.ReliabilityGoal = req.Value
				case 2:
					n.HazardRateGoal = req.Value
				case 3:
					n.MTBFGoal = req.Value
				}
			}
			if req.MissionTime > 0 {
				n.MissionTime = req.MissionTime
			}
		})
		if err != nil {
			return nil, err
		}

		if _, err := svc.Allocation.DoCalculateGoals(req.NodeID); err != nil {
			restore()
			return nil, err
		}
		if err := svc.save(p.Context, req.NodeID); err != nil {
			return nil, err
		}
		return currentNode(svc.Tree, req.NodeID)
	}
}

// allocateResolver apportions the node's goal among its children. A method
// argument replaces the node's allocation method first; a chaining
// argument changes the manager's options for this and later runs. Both are
// undone when the allocation fails.
func allocateResolver(svc *Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		req := validation.AllocateRequest{NodeID: p.Args["id"].(int)}
		if v, ok := p.Args["method"].(int); ok {
			req.Method = v
		}
		if v, ok := p.Args["chaining"].(string); ok {
			req.Chaining = v
		}
		if err := validation.ValidateAllocateRequest(&req); err != nil {
			return nil, err
		}

		svc.mu.Lock()
		defer svc.mu.Unlock()

		prevOpts := svc.Allocation.Options()
		if req.Chaining != "" {
			c, err := allocation.ParseChaining(req.Chaining)
			if err != nil {
				return nil, err
			}
			opts := prevOpts
			opts.Chaining = c
			svc.Allocation.SetOptions(opts)
		}
		restore, err := override(svc.Tree, req.NodeID, func(n *hardware.Node) {
			if req.Method != 0 {
				n.AllocationMethodID = req.Method
			}
		})
		if err != nil {
			svc.Allocation.SetOptions(prevOpts)
			return nil, err
		}

		out, err := svc.Allocation.DoCalculateAllocation(req.NodeID)
		if err != nil {
			restore()
			svc.Allocation.SetOptions(prevOpts)
			return nil, err
		}

		family, err := analysis.Family(svc.Tree, req.NodeID)
		if err != nil {
			return nil, err
		}
		if err := svc.save(p.Context, family...); err != nil {
			return nil, err
		}

		children, err := childMaps(svc.Tree, req.NodeID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"parentId": out.ParentID,
			"method":   out.Method.String(),
			"chaining": svc.Allocation.Options().Chaining.String(),
			"children": children,
			"failures": failureMaps(out.Failures),
		}, nil
	}
}

func allocateTreeResolver(svc *Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		id := p.Args["id"].(int)
		if err := validation.ValidateAllocateRequest(&validation.AllocateRequest{NodeID: id}); err != nil {
			return nil, err
		}

		svc.mu.Lock()
		defer svc.mu.Unlock()

		res, err := svc.Allocation.DoAllocateTree(id)
		if err != nil {
			return nil, err
		}
		if err := svc.save(p.Context); err != nil {
			return nil, err
		}
		return map[string]any{
			"allocated": res.Allocated,
			"failures":  failureMaps(res.Failures),
		}, nil
	}
}

// calculateSimilarItemResolver optionally replaces the node's method and
// equations before running the analysis. Equations are assigned in order;
// the remaining slots are blanked and their results zeroed.
func calculateSimilarItemResolver(svc *Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		req := validation.SimilarItemRequest{NodeID: p.Args["id"].(int)}
		raw, hasFunctions := p.Args["functions"].([]any)
		for _, f := range raw {
			s, _ := f.(string)
			req.Functions = append(req.Functions, s)
		}
		if err := validation.ValidateSimilarItemRequest(&req); err != nil {
			return nil, err
		}
		method, hasMethod := p.Args["method"].(int)
		if hasMethod {
			if _, err := similaritem.ParseMethod(method); err != nil {
				return nil, err
			}
		}

		svc.mu.Lock()
		defer svc.mu.Unlock()

		var setErr error
		restore, err := override(svc.Tree, req.NodeID, func(n *hardware.Node) {
			if hasMethod {
				n.SimilarItemMethodID = method
			}
			if hasFunctions {
				in := similaritem.Inputs{Functions: n.Functions, Results: n.Results}
				if setErr = in.SetFunctions(req.Functions...); setErr == nil {
					n.Functions, n.Results = in.Functions, in.Results
				}
			}
		})
		if err != nil {
			return nil, err
		}
		if setErr != nil {
			restore()
			return nil, setErr
		}

		if err := svc.SimilarItem.DoCalculateSimilarItem(req.NodeID); err != nil {
			restore()
			return nil, err
		}
		if err := svc.save(p.Context, req.NodeID); err != nil {
			return nil, err
		}
		return currentNode(svc.Tree, req.NodeID)
	}
}

func rollUpResolver(svc *Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		id := p.Args["id"].(int)

		svc.mu.Lock()
		defer svc.mu.Unlock()

		if err := svc.SimilarItem.DoRollUpChangeDescriptions(id); err != nil {
			return nil, err
		}
		if err := svc.save(p.Context, id); err != nil {
			return nil, err
		}
		return currentNode(svc.Tree, id)
	}
}

// override applies fn to node id and returns a func that puts the node back
// as it was.
func override(tree *hardware.Tree, id int, fn func(*hardware.Node)) (func(), error) {
	before, err := tree.Get(id)
	if err != nil {
		return nil, err
	}
	if err := tree.Update(id, fn); err != nil {
		return nil, err
	}
	return func() {
		_ = tree.Update(id, func(n *hardware.Node) { *n = before })
	}, nil
}

func currentNode(tree *hardware.Tree, id int) (any, error) {
	n, err := tree.Get(id)
	if err != nil {
		return nil, err
	}
	return nodeMap(&n), nil
}
