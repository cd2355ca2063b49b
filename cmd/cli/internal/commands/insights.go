package commands

import (
	"context"
	"fmt"

	"github.com/skillsync/skillsync/internal/api"
	"github.com/skillsync/skillsync/internal/route"
	"github.com/skillsync/skillsync/internal/session"
)

type InsightsCmd struct{}

func (c *InsightsCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	s, err := authorize(app, "/insights", route.Requirements{Role: session.RoleStudent, SWOTComplete: true})
	if err != nil {
		return err
	}

	in, err := app.Client.ActivityInsights(ctx, s.User.ID)
	if err != nil {
		return fmt.Errorf("failed to load insights: %w", err)
	}

	renderInsights(app.Out, in)
	return nil
}

type EvaluateCmd struct {
	Question string `help:"Scenario question" required:""`
	Answer   string `help:"Your answer" required:""`
}

func (c *EvaluateCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	s, err := authorize(app, "/evaluate", route.Requirements{Role: session.RoleStudent})
	if err != nil {
		return err
	}

	ev, err := app.Client.Evaluate(ctx, api.EvaluateRequest{
		UserID:           s.User.ID,
		ScenarioQuestion: c.Question,
		StudentAnswer:    c.Answer,
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	return renderEvaluation(app.Out, ev)
}
