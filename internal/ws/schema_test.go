package ws

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestWSProtocolSchema(t *testing.T) {
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/ws_v1.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource("ws_v1.schema.json", strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile("ws_v1.schema.json")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	samples := []string{
		`{"type":"result","protocol_version":"1.0","req":"join","ok":true}`,
		`{"type":"result","protocol_version":"1.0","req":"action","ok":false,"error":"not_your_turn"}`,
		`{"type":"table_closed","protocol_version":"1.0","table_id":"tbl_1"}`,
		`{"type":"state","protocol_version":"1.0","view":{
			"table_id":"tbl_1","hand_id":"tbl_1-h000001","hand_no":1,
			"phase":"take_action","street":"preflop",
			"community_cards":[],"pot_total":150,
			"pots":[{"amount":150,"eligible_seats":[0,1]}],
			"players":[
				{"seat":0,"user_id":"u1","stack":950,"status":"active","round_bet":50,"hole_cards":["As","Kd"],"is_button":true},
				{"seat":1,"user_id":"u2","stack":900,"status":"active","round_bet":100}
			],
			"button":0,"actor_seat":0,"current_bet":100,
			"small_blind":50,"big_blind":100,"action_timeout_ms":30000,
			"choices":{"seat":0,"can_fold":true,"can_check":false,"can_call":true,"call_amount":50,"can_raise":true,"min_raise_to":200,"max_raise_to":1000}
		}}`,
	}

	for i, s := range samples {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			t.Fatalf("unmarshal sample %d: %v", i, err)
		}
		if err := schema.Validate(v); err != nil {
			t.Fatalf("schema validate sample %d: %v", i, err)
		}
	}
}

func TestStateUpdateMatchesSchema(t *testing.T) {
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/ws_v1.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource("ws_v1.schema.json", strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile("ws_v1.schema.json")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	// A real view off a live table must satisfy the published schema.
	view := startedView(t, "u1")
	raw, err := json.Marshal(StateUpdate{Type: "state", ProtocolVersion: ProtocolVersion, View: view})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := schema.Validate(v); err != nil {
		t.Fatalf("live view does not match schema: %v", err)
	}
}
