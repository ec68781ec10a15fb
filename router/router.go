// Package router dispatches parsed chat commands to economy operations.
//
// Routes are declared once in a static table (see table.go) of names, the
// required tier, how arguments resolve, and the handler. Names that match no
// route fall through to playing a sound effect.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/onnwee/chat-thief/economy"
	"github.com/onnwee/chat-thief/parse"
	"github.com/onnwee/chat-thief/telemetry"
)

// Request is one parsed command with its resolved targets.
type Request struct {
	User    string
	Command string
	Args    []string
	Targets parse.Targets
}

// Handler runs one command.
type Handler func(ctx context.Context, req Request) (economy.Result, error)

type route struct {
	names  []string
	tier   Tier
	opts   parse.Options
	help   string
	handle Handler
}

// Router is safe for concurrent use; its tables never change after New.
type Router struct {
	eco     *economy.Economy
	tiers   Tiers
	ignored map[string]struct{}
	routes  map[string]*route
	order   []*route
}

// New compiles the route table. ignored identities (the bot itself, other
// bots) are never routed.
func New(eco *economy.Economy, tiers Tiers, ignored []string) *Router {
	r := &Router{
		eco:     eco,
		tiers:   tiers,
		ignored: make(map[string]struct{}, len(ignored)),
		routes:  make(map[string]*route),
	}
	for _, name := range ignored {
		r.ignored[strings.ToLower(name)] = struct{}{}
	}
	for _, rt := range r.table() {
		rt := rt
		r.order = append(r.order, rt)
		for _, name := range rt.names {
			if _, dup := r.routes[name]; dup {
				panic(fmt.Sprintf("router: duplicate route name %q", name))
			}
			r.routes[name] = rt
		}
	}
	return r
}

// HandleChatLine is the single inbound entry point. It returns the lines to
// say in chat; nil means stay quiet. Only store failures are returned as
// errors.
func (r *Router) HandleChatLine(ctx context.Context, identity, text string) ([]string, error) {
	telemetry.Inc(telemetry.ChatLinesReceived)
	msg, ok := parse.ParseLine(identity, text)
	if !ok {
		return nil, nil
	}
	if _, skip := r.ignored[msg.User]; skip {
		return nil, nil
	}
	res, err := r.Route(ctx, msg)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// Route dispatches one parsed message.
func (r *Router) Route(ctx context.Context, msg parse.Message) (res economy.Result, err error) {
	rt, known := r.routes[msg.Command]
	label := msg.Command
	if !known {
		label = "play"
	}

	ctx, span := telemetry.StartCommandSpan(ctx, label, msg.User)
	defer span.End()
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "router"), slog.String("user", msg.User), slog.String("command", msg.Command))

	start := time.Now()
	defer func() {
		if telemetry.RouteDuration != nil {
			telemetry.RouteDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			telemetry.Inc(telemetry.StoreErrors)
			telemetry.IncCommand(label, "error")
			telemetry.RecordError(span, err)
			return
		}
		telemetry.IncCommand(label, res.Outcome.String())
		telemetry.SetSpanSuccess(span)
	}()

	if !known {
		return r.eco.Play(ctx, msg.User, msg.Command)
	}
	if !r.tiers.Allows(msg.User, rt.tier) {
		telemetry.Inc(telemetry.CommandsDenied)
		logger.Debug("permission denied", slog.String("required", rt.tier.String()))
		return economy.Result{Outcome: economy.Rejected}, nil
	}
	// god routes stay open so a banned user can still be revived
	if rt.tier < God {
		banned, err := r.eco.Banned(ctx, msg.User)
		if err != nil {
			return economy.Result{}, fmt.Errorf("%s: %w", msg.Command, err)
		}
		if banned {
			telemetry.Inc(telemetry.CommandsDenied)
			logger.Debug("banned user refused")
			return economy.Result{Outcome: economy.Rejected}, nil
		}
	}

	req := Request{
		User:    msg.User,
		Command: msg.Command,
		Args:    msg.Args,
		Targets: parse.Resolve(msg.User, msg.Args, rt.opts),
	}
	res, err = rt.handle(ctx, req)
	if err != nil {
		logger.Error("command failed", slog.Any("err", err))
		return economy.Result{}, fmt.Errorf("%s: %w", msg.Command, err)
	}
	logger.Debug("command handled", slog.String("outcome", res.Outcome.String()))
	return res, nil
}

// Commands lists every routed name with its required tier.
func (r *Router) Commands() map[string]Tier {
	out := make(map[string]Tier, len(r.routes))
	for name, rt := range r.routes {
		out[name] = rt.tier
	}
	return out
}

// Tiers returns the configured permission tiers.
func (r *Router) Tiers() Tiers { return r.tiers }
