package building

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewCreateRequest_TwoFloorsThreeRooms(t *testing.T) {
	req, err := NewCreateRequest(Form{
		Name:          "HQ",
		Type:          CategoryCommercial,
		Floors:        2,
		RoomsPerFloor: 3,
	})
	if err != nil {
		t.Fatalf("NewCreateRequest() error = %v", err)
	}

	if got := req.RoomCount(); got != 6 {
		t.Fatalf("RoomCount() = %d, want 6", got)
	}

	for fi, f := range req.Floors {
		if f.Number != fi {
			t.Errorf("floor[%d].Number = %d, want %d", fi, f.Number, fi)
		}
		for ri, r := range f.Rooms {
			if r.Number != ri {
				t.Errorf("floor %d room[%d].Number = %d, want %d", fi, ri, r.Number, ri)
			}
			if len(r.Devices) != 6 {
				t.Fatalf("floor %d room %d has %d devices, want 6", fi, ri, len(r.Devices))
			}
			for i, d := range r.Devices {
				if d.Type != defaultLoadout[i] {
					t.Errorf("device[%d].Type = %q, want %q", i, d.Type, defaultLoadout[i])
				}
				if d.Status != StatusActive {
					t.Errorf("device[%d].Status = %q, want active", i, d.Status)
				}
			}
		}
	}
}

func TestNewCreateRequest_DefaultsAndTrim(t *testing.T) {
	form := DefaultForm()
	form.Name = "  Tower  "

	req, err := NewCreateRequest(form)
	if err != nil {
		t.Fatalf("NewCreateRequest() error = %v", err)
	}

	if req.Name != "Tower" {
		t.Errorf("Name = %q, want %q", req.Name, "Tower")
	}
	if req.Type != CategoryOffice {
		t.Errorf("Type = %q, want office", req.Type)
	}
	if len(req.Floors) != 1 || len(req.Floors[0].Rooms) != 4 {
		t.Errorf("default form produced %d floors / %d rooms, want 1 / 4", len(req.Floors), len(req.Floors[0].Rooms))
	}
}

func TestNewCreateRequest_EmptyTypeIsOffice(t *testing.T) {
	req, err := NewCreateRequest(Form{Name: "A", Floors: 1, RoomsPerFloor: 1})
	if err != nil {
		t.Fatalf("NewCreateRequest() error = %v", err)
	}
	if req.Type != CategoryOffice {
		t.Errorf("Type = %q, want office", req.Type)
	}
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		wantErr error
	}{
		{"valid", Form{Name: "A", Type: CategoryResidential, Floors: 50, RoomsPerFloor: 20}, nil},
		{"blank name", Form{Name: "   ", Floors: 1, RoomsPerFloor: 1}, ErrInvalidName},
		{"bad type", Form{Name: "A", Type: "warehouse", Floors: 1, RoomsPerFloor: 1}, ErrInvalidCategory},
		{"zero floors", Form{Name: "A", Floors: 0, RoomsPerFloor: 1}, ErrInvalidFloors},
		{"too many floors", Form{Name: "A", Floors: 51, RoomsPerFloor: 1}, ErrInvalidFloors},
		{"zero rooms", Form{Name: "A", Floors: 1, RoomsPerFloor: 0}, ErrInvalidRooms},
		{"too many rooms", Form{Name: "A", Floors: 1, RoomsPerFloor: 21}, ErrInvalidRooms},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateRequest_JSONShape(t *testing.T) {
	req, err := NewCreateRequest(Form{Name: "A", Floors: 1, RoomsPerFloor: 1})
	if err != nil {
		t.Fatalf("NewCreateRequest() error = %v", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"name":"A","type":"office","floors":[{"number":0,"rooms":[{"number":0,"devices":[` +
		`{"type":"temperature_sensor","status":"active"},` +
		`{"type":"pressure_sensor","status":"active"},` +
		`{"type":"valve_controller","status":"active"},` +
		`{"type":"damper_controller","status":"active"},` +
		`{"type":"frequency_controller","status":"active"},` +
		`{"type":"power_meter","status":"active"}]}]}]}`
	if string(data) != want {
		t.Errorf("JSON = %s\nwant   %s", data, want)
	}
}

func TestDefaultDevices_IndependentSlices(t *testing.T) {
	a := DefaultDevices(0)
	b := DefaultDevices(1)
	a[0].Status = StatusInactive

	if b[0].Status != StatusActive {
		t.Error("DefaultDevices must return a fresh slice per room")
	}
}
