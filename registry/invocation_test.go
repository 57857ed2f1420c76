package registry

import (
	"context"
	"reflect"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
)

func TestNewInvocationFromSlashData(t *testing.T) {
	payload := `{
		"id": "1",
		"name": "main",
		"type": 1,
		"options": [{
			"name": "sub2",
			"type": 1,
			"options": [{"name": "arg1", "type": 3, "value": "x"}]
		}]
	}`

	var data discord.SlashCommandInteractionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	inv := NewInvocation(data)
	if !reflect.DeepEqual(inv.Path, []string{"main", "sub2"}) {
		t.Fatalf("unexpected path %v", inv.Path)
	}
	if got := string(inv.Options["arg1"]); got != `"x"` {
		t.Fatalf("unexpected raw arg1 %s", got)
	}

	h := &harness{}
	d := newDispatcher(t, Options{}, exampleTree(h))
	if err := d.Dispatch(context.Background(), inv); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if h.calls[0].options["arg1"] != "x" {
		t.Fatalf("unexpected options %v", h.calls[0].options)
	}
}

func TestNewInvocationFromGroupData(t *testing.T) {
	payload := `{
		"id": "1",
		"name": "settings",
		"type": 1,
		"options": [{
			"name": "logging",
			"type": 2,
			"options": [{"name": "enable", "type": 1}]
		}]
	}`

	var data discord.SlashCommandInteractionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	inv := NewInvocation(data)
	if !reflect.DeepEqual(inv.Path, []string{"settings", "logging", "enable"}) {
		t.Fatalf("unexpected path %v", inv.Path)
	}
	if len(inv.Options) != 0 {
		t.Fatalf("expected no options, got %v", inv.Options)
	}
}

func TestNewAutocompleteInvocation(t *testing.T) {
	payload := `{
		"id": "1",
		"name": "music",
		"type": 1,
		"options": [{
			"name": "play",
			"type": 1,
			"options": [{"name": "query", "type": 3, "value": "never gon", "focused": true}]
		}]
	}`

	var data discord.AutocompleteInteractionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	inv, focused := NewAutocompleteInvocation(data)
	if focused != "query" {
		t.Fatalf("expected focused query, got %q", focused)
	}
	if !reflect.DeepEqual(inv.Path, []string{"music", "play"}) {
		t.Fatalf("unexpected path %v", inv.Path)
	}
}

func TestInvokeWith(t *testing.T) {
	inv := Invoke("a", "b").With("n", 3).With("s", "x").WithRaw("r", json.RawMessage(`true`))
	want := map[string]string{"n": "3", "s": `"x"`, "r": "true"}
	for name, raw := range want {
		if got := string(inv.Options[name]); got != raw {
			t.Fatalf("option %s: expected %s, got %s", name, raw, got)
		}
	}
	if !reflect.DeepEqual(inv.optionNames(), []string{"n", "r", "s"}) {
		t.Fatalf("option names are not sorted: %v", inv.optionNames())
	}
}
