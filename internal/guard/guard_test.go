package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/testkit"
)

func evaluate(c *command.Command, ev *command.Event, args []string, p *testkit.Predicates) Kind {
	inv := &command.Invocation{Event: ev, Args: args}
	return DefaultChain().Evaluate(context.Background(), c, inv, p)
}

func TestChain_AdminReportedBeforeMissingArgs(t *testing.T) {
	c := &command.Command{
		Name:   "reload",
		Guards: command.Guards{AdminOnly: true, ArgsNeeded: true, ArgsMinLength: 1},
	}
	p := &testkit.Predicates{Admin: false}

	assert.Equal(t, AdminOnly, evaluate(c, testkit.GuildEvent("!reload"), nil, p))
	assert.Zero(t, p.Calls("permissions"))
	assert.Zero(t, p.Calls("guild"))
}

func TestChain_EachGuard(t *testing.T) {
	tests := []struct {
		name   string
		guards command.Guards
		ev     *command.Event
		args   []string
		preds  *testkit.Predicates
		want   Kind
	}{
		{"no guards", command.Guards{}, testkit.GuildEvent(""), nil, &testkit.Predicates{}, Pass},
		{"admin ok", command.Guards{AdminOnly: true}, testkit.GuildEvent(""), nil, &testkit.Predicates{Admin: true}, Pass},
		{"admin denied", command.Guards{AdminOnly: true}, testkit.GuildEvent(""), nil, &testkit.Predicates{}, AdminOnly},
		{
			"permission all-of missing one",
			command.Guards{NeedPermission: []command.Permission{"KICK_MEMBERS", "BAN_MEMBERS"}},
			testkit.GuildEvent(""), nil,
			&testkit.Predicates{Permissions: map[command.Permission]bool{"KICK_MEMBERS": true}},
			MissingPermission,
		},
		{
			"permission all-of satisfied",
			command.Guards{NeedPermission: []command.Permission{"KICK_MEMBERS", "BAN_MEMBERS"}},
			testkit.GuildEvent(""), nil,
			&testkit.Predicates{Permissions: map[command.Permission]bool{"KICK_MEMBERS": true, "BAN_MEMBERS": true}},
			Pass,
		},
		{"guild only from dm", command.Guards{GuildOnly: true}, testkit.DMEvent(""), nil, &testkit.Predicates{}, GuildOnly},
		{"guild only from guild", command.Guards{GuildOnly: true}, testkit.GuildEvent(""), nil, &testkit.Predicates{}, Pass},
		{"dm only from guild", command.Guards{DMOnly: true}, testkit.GuildEvent(""), nil, &testkit.Predicates{}, DMOnly},
		{"dm only from dm", command.Guards{DMOnly: true}, testkit.DMEvent(""), nil, &testkit.Predicates{}, Pass},
		{"nsfw denied", command.Guards{NSFWOnly: true}, testkit.GuildEvent(""), nil, &testkit.Predicates{}, NSFWOnly},
		{"nsfw ok", command.Guards{NSFWOnly: true}, testkit.GuildEvent(""), nil, &testkit.Predicates{NSFW: true}, Pass},
		{"args below min", command.Guards{ArgsNeeded: true, ArgsMinLength: 2}, testkit.GuildEvent(""), []string{"a"}, &testkit.Predicates{}, MissingArgs},
		{"args at min", command.Guards{ArgsNeeded: true, ArgsMinLength: 2}, testkit.GuildEvent(""), []string{"a", "b"}, &testkit.Predicates{}, Pass},
		{"args needed without min", command.Guards{ArgsNeeded: true}, testkit.GuildEvent(""), nil, &testkit.Predicates{}, MissingArgs},
		{"min without args needed", command.Guards{ArgsMinLength: 3}, testkit.GuildEvent(""), nil, &testkit.Predicates{}, Pass},
		{"guild before nsfw", command.Guards{GuildOnly: true, NSFWOnly: true}, testkit.DMEvent(""), nil, &testkit.Predicates{}, GuildOnly},
		{
			"permission before guild",
			command.Guards{NeedPermission: []command.Permission{"MANAGE_GUILD"}, GuildOnly: true},
			testkit.DMEvent(""), nil, &testkit.Predicates{},
			MissingPermission,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &command.Command{Name: "x", Guards: tt.guards}
			assert.Equal(t, tt.want, evaluate(c, tt.ev, tt.args, tt.preds))
		})
	}
}

func TestChain_UnsetGuardsAreNotConsulted(t *testing.T) {
	p := &testkit.Predicates{}
	assert.Equal(t, Pass, evaluate(&command.Command{Name: "ping"}, testkit.GuildEvent(""), nil, p))
	for _, name := range []string{"admin", "permissions", "guild", "dm", "nsfw"} {
		assert.Zero(t, p.Calls(name), name)
	}
}

func TestKind_MessageKeysAreDistinct(t *testing.T) {
	seen := map[string]Kind{}
	for _, k := range []Kind{AdminOnly, MissingPermission, GuildOnly, DMOnly, NSFWOnly, MissingArgs} {
		key := k.MessageKey()
		assert.NotEmpty(t, key, k.String())
		_, dup := seen[key]
		assert.False(t, dup, key)
		seen[key] = k
	}
	assert.Empty(t, Pass.MessageKey())
}
