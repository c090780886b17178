package circuit_test

import (
	"testing"

	"github.com/openpcb/circuitcore/pkg/circuit"
)

func TestToObjectFromObject_RoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	b := circuit.NewBuilder()
	top := b.NewCircuit("top")
	a, err := b.NewNet(top, "A")
	if err != nil {
		t.Fatal(err)
	}
	c, err := b.NewNet(top, "C")
	if err != nil {
		t.Fatal(err)
	}
	r1, err := b.NewInst(top, "R1", reg, "R", "10k")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AssignInst(top, r1, []string{"~", "~"}, []circuit.Ref{circuit.NetRef(a), circuit.NetRef(c)}); err != nil {
		t.Fatal(err)
	}

	data, err := b.ToObject(top)
	if err != nil {
		t.Fatalf("ToObject: %v", err)
	}

	b2, root2, err := circuit.FromObject(data, reg)
	if err != nil {
		t.Fatalf("FromObject: %v", err)
	}

	if root2.UID != top.UID || root2.Name != top.Name {
		t.Fatalf("root mismatch: got uid=%d name=%s, want uid=%d name=%s", root2.UID, root2.Name, top.UID, top.Name)
	}
	if len(root2.Nets) != len(top.Nets) || len(root2.Insts) != len(top.Insts) {
		t.Fatalf("element counts not preserved: nets %d vs %d, insts %d vs %d",
			len(root2.Nets), len(top.Nets), len(root2.Insts), len(top.Insts))
	}

	r1Again := b2.Inst(r1.UID)
	if r1Again == nil {
		t.Fatal("inst R1 not found after round-trip")
	}
	if len(r1Again.AssignUIDs) != len(r1.AssignUIDs) {
		t.Fatalf("want %d assign uids, got %d", len(r1.AssignUIDs), len(r1Again.AssignUIDs))
	}
	for _, uid := range r1Again.AssignUIDs {
		if b2.InstAssign(uid) == nil {
			t.Fatalf("assign %d missing after round-trip", uid)
		}
	}

	// A fresh uid allocated post-round-trip must never collide with a
	// restored one.
	newNet, err := b2.NewNet(root2, "FRESH")
	if err != nil {
		t.Fatal(err)
	}
	if newNet.UID == a.UID || newNet.UID == c.UID {
		t.Fatalf("fresh uid %d collides with a restored uid", newNet.UID)
	}
}
