package commsutil

import "testing"

func TestCodecRoundTrip(t *testing.T) {
	type payload struct {
		Ref  string   `json:"ref"`
		Args []string `json:"args"`
	}

	data, err := EncodePayload(payload{Ref: "demo/Box", Args: []string{"42"}})
	if err != nil {
		t.Fatalf("commsutil:codec_test - EncodePayload: %v", err)
	}

	var got payload
	if err := DecodePayload(data, &got); err != nil {
		t.Fatalf("commsutil:codec_test - DecodePayload: %v", err)
	}
	if got.Ref != "demo/Box" || len(got.Args) != 1 || got.Args[0] != "42" {
		t.Errorf("commsutil:codec_test - round trip produced %+v", got)
	}
}

func TestDecodePayload_Invalid(t *testing.T) {
	var out map[string]interface{}
	if err := DecodePayload([]byte("{not json"), &out); err == nil {
		t.Error("commsutil:codec_test - expected error for invalid JSON")
	}
}
