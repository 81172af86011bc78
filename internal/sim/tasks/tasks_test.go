package tasks

import (
	"testing"

	"genesis.ai/internal/sim/world/logic/point"
)

func TestLabel(t *testing.T) {
	cases := []struct {
		a    Action
		want string
	}{
		{nil, "IDLE"},
		{&Gather{Resource: "Wood"}, "GATHER:Wood"},
		{&Craft{RecipeID: "CrudeAxe"}, "CRAFT:CrudeAxe"},
		{&Signal{Type: "help-food"}, "SIGNAL:help-food"},
		{&Rest{}, "REST"},
	}
	for _, c := range cases {
		if got := Label(c.a); got != c.want {
			t.Fatalf("Label(%T)=%q want %q", c.a, got, c.want)
		}
	}
}

func TestSpotIsPromoted(t *testing.T) {
	var a Action = &Drink{Spot{Goal: point.Pt(3, 3), Stand: point.Pt(2, 3)}}
	if a.At().Stand != point.Pt(2, 3) || a.Kind() != KindDrink {
		t.Fatalf("unexpected spot %+v kind %s", a.At(), a.Kind())
	}
}
