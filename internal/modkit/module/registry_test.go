package module

import (
	stdctx "context"
	"testing"
)

type pingPort interface {
	Ping(stdctx.Context) error
}

type noticePorts struct {
	Label string
}

func TestRegisterAndPortsAs(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("notice", noticePorts{Label: "notice-ports"})

	got, ok := PortsAs[noticePorts]("notice")
	if !ok || got.Label != "notice-ports" {
		t.Fatalf("PortsAs = (%+v, %v)", got, ok)
	}

	if _, ok := PortsAs[noticePorts]("missing"); ok {
		t.Fatalf("PortsAs found an unregistered module")
	}
	if _, ok := PortsAs[pingPort]("notice"); ok {
		t.Fatalf("PortsAs asserted the wrong type")
	}
}

func TestResetClearsRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("record", noticePorts{Label: "x"})
	Reset()
	if _, ok := PortsAs[noticePorts]("record"); ok {
		t.Fatalf("registry not cleared")
	}
}
