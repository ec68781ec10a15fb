package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/onnwee/chat-thief/economy"
	"github.com/onnwee/chat-thief/parse"
)

var preferUser = parse.Options{PreferUser: true}

func say(lines ...string) economy.Result { return economy.Result{Outcome: economy.OK, Lines: lines} }

// table is the ordered registration list. Help text shows up in !help.
func (r *Router) table() []*route {
	e := r.eco
	return []*route{
		// info
		{names: []string{"me"}, help: "Info about yourself",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Me(ctx, req.User)
			}},
		{names: []string{"permissions", "permission", "perms", "perm"},
			help: "!perms !clap OR !perms @beginbot - See who is allowed to use the !clap command",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Perms(ctx, req.Targets)
			}},
		{names: []string{"economy"}, help: "Total Cool Points in the market",
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.Market(ctx)
			}},
		{names: []string{"most_popular"}, help: "!most_popular - Shows the most coveted commands",
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.MostPopular(ctx)
			}},
		{names: []string{"leaderboard", "forbes"}, help: "The richest users",
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.Leaderboard(ctx)
			}},
		{names: []string{"loserboard"}, help: "The poorest users",
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.Loserboard(ctx)
			}},
		{names: []string{"peasants"}, help: "Who is hanging out in chat",
			handle: r.peasants},
		{names: []string{"streamlords"},
			handle: func(context.Context, Request) (economy.Result, error) {
				return say("Stream Lords: " + mentions(r.tiers.Lords())), nil
			}},
		{names: []string{"streamgods"},
			handle: func(context.Context, Request) (economy.Result, error) {
				return say("Stream Gods: " + mentions(r.tiers.Gods())), nil
			}},
		{names: []string{"help"}, handle: r.help},

		// economy
		{names: []string{"buy"}, help: "!buy COMMAND or !buy random - Buy a Command with Cool Points",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				count := 1
				if req.Targets.HasAmount {
					count = req.Targets.Amount
				}
				return e.Buy(ctx, req.User, req.Targets.Command, count)
			}},
		{names: []string{"steal"}, help: "!steal COMMAND USER - steal a command from someone else, costs Mana",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Steal(ctx, req.User, req.Targets.User, req.Targets.Command)
			}},
		{names: []string{"give", "transfer"}, help: "!transfer COMMAND USER - transfer command to someone, costs no cool points",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Give(ctx, req.User, req.Targets.User, req.Targets.Command)
			}},
		{names: []string{"share", "clone", "add_perm", "add_perms", "share_perm", "share_perms"},
			help: "!share COMMAND USER - share access to a command",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Share(ctx, req.User, req.Targets.Command, req.Targets.User)
			}},
		{names: []string{"props", "bigups", "endorse"}, opts: preferUser,
			help: "!props @beginbot (AMOUNT_OF_STREET_CRED) - Give your street cred to beginbot",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Props(ctx, req.User, req.Targets.User, req.Targets.Amount, req.Targets.HasAmount)
			}},
		{names: []string{"donate"}, opts: preferUser, help: "!donate give away all your commands to random users",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Donate(ctx, req.User, req.Targets.User)
			}},
		{names: []string{"support", "love", "like"},
			help: "!love USER COMMAND - Show support for a command (Unmutes if theres Haters)",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				t := req.Targets
				switch {
				case t.Command.IsLiteral() && t.User.IsMissing():
					return e.Support(ctx, req.User, t.Command.Name)
				case t.User.IsLiteral() && t.Command.IsMissing():
					return e.RideOrDie(ctx, req.User, t.User.Name)
				}
				return economy.Result{Outcome: economy.ParseError}, nil
			}},
		{names: []string{"dislike", "hate", "detract"}, help: "!hate COMMAND - Vote to silence a command",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				t := req.Targets
				if t.Command.IsLiteral() && t.User.IsMissing() {
					return e.Detract(ctx, req.User, t.Command.Name)
				}
				return economy.Result{Outcome: economy.ParseError}, nil
			}},

		// revolution
		{names: []string{"vote"},
			help: "!vote (peace|revolution) - Where you stand when a coup happens",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				choice := ""
				if len(req.Args) > 0 {
					choice = req.Args[0]
				}
				return e.Vote(ctx, req.User, choice)
			}},
		{names: []string{"peace", "revolution"},
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Vote(ctx, req.User, req.Command)
			}},
		{names: []string{"coup"},
			help: "!coup - trigger the will of the people. If you can't afford it you lose all your Street Cred and Cool Points",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Coup(ctx, req.User)
			}},

		// cube casino
		{names: []string{"bet"}, help: "!bet SECONDS - Guess how long the cube solve takes",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Bet(ctx, req.User, req.Targets.Amount, req.Targets.HasAmount)
			}},
		{names: []string{"all_bets", "all_bet", "bets"},
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.Bets(ctx)
			}},
		{names: []string{"start_cube"}, tier: Lord,
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.StartSolve(ctx)
			}},
		{names: []string{"new_cube"}, tier: God,
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.NewCube(ctx)
			}},
		{names: []string{"cubed"}, tier: God,
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				if !req.Targets.HasAmount {
					return economy.Result{Outcome: economy.ParseError, Lines: []string{"Usage: !cubed SECONDS"}}, nil
				}
				return e.Gamble(ctx, req.Targets.Amount)
			}},

		// feedback
		{names: []string{"issue", "bug"}, help: "!issue Description of a Bug - A bug you found you want Beginbot to look at",
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.ReportIssue(ctx, req.User, strings.Join(req.Args, " "))
			}},
		{names: []string{"issues"},
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.Issues(ctx)
			}},
		{names: []string{"delete_issue"}, tier: God,
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				id := ""
				if len(req.Args) > 0 {
					id = req.Args[0]
				}
				return e.DeleteIssue(ctx, id)
			}},

		// moderation
		{names: []string{"silence"}, tier: God,
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Silence(ctx, req.Targets)
			}},
		{names: []string{"revive"}, tier: God,
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Revive(ctx, req.Targets)
			}},
		{names: []string{"do_over"}, tier: God,
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.DoOver(ctx)
			}},
		{names: []string{"paperup"}, tier: God, opts: preferUser,
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Paperup(ctx, req.Targets.User, req.Targets.Amount, req.Targets.HasAmount)
			}},
		{names: []string{"dropeffect"}, tier: God,
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.Dropeffect(ctx, req.Targets)
			}},
		{names: []string{"dropreward"}, tier: God,
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.DropReward(ctx)
			}},
		{names: []string{"set_cost"}, tier: God,
			handle: func(ctx context.Context, req Request) (economy.Result, error) {
				return e.SetCost(ctx, req.Targets.Command, req.Targets.Amount, req.Targets.HasAmount)
			}},
		{names: []string{"facts"}, tier: God,
			handle: func(ctx context.Context, _ Request) (economy.Result, error) {
				return e.Facts(ctx)
			}},
	}
}

func (r *Router) peasants(ctx context.Context, _ Request) (economy.Result, error) {
	pool := r.eco.Picker().Pool
	if pool == nil {
		return say("Nobody is here"), nil
	}
	users, err := pool.RecentActiveUsers(ctx)
	if err != nil {
		return economy.Result{}, err
	}
	if len(users) == 0 {
		return say("Nobody is here"), nil
	}
	sorted := append([]string(nil), users...)
	sort.Strings(sorted)
	return say(mentions(sorted)), nil
}

func (r *Router) help(_ context.Context, req Request) (economy.Result, error) {
	if len(req.Args) > 0 {
		name := strings.ToLower(strings.TrimPrefix(req.Args[0], "!"))
		if rt, ok := r.routes[name]; ok && rt.help != "" {
			return say(rt.help), nil
		}
		return say(fmt.Sprintf("No help for !%s", name)), nil
	}
	var names []string
	for _, rt := range r.order {
		if rt.help != "" && rt.tier == Viewer {
			names = append(names, "!"+rt.names[0])
		}
	}
	return say("Call !help with a specific command for more details: " + strings.Join(names, " ")), nil
}

func mentions(names []string) string {
	if len(names) == 0 {
		return "nobody"
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "@" + n
	}
	return strings.Join(parts, " ")
}
