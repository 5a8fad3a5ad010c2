package main

import (
	"testing"
)

func newTestGateway(t *testing.T) (*ProtocolGateway, *Session, *Roster) {
	t.Helper()
	session := NewSession(2)
	roster := NewRoster()
	gw := NewProtocolGateway(session, roster, "secret")

	sched := &fakeScheduler{}
	rotator := NewProviderRotator(namedFactories("solo"), newTestRNG())
	scoring := NewScoringDispatcher(roster)
	gw.SetOrchestrator(NewRoundOrchestrator(session, roster, rotator, scoring, sched, gw))
	return gw, session, roster
}

func lastMessage(t *testing.T, s *fakeSender) any {
	t.Helper()
	if len(s.sent) == 0 {
		t.Fatal("no message sent")
	}
	return s.sent[len(s.sent)-1]
}

func TestGatewayJoinSuccess(t *testing.T) {
	gw, _, roster := newTestGateway(t)
	h := &fakeSender{}

	gw.HandleMessage(h, []byte(`{"type":"join_request","name":"alice","password":"secret"}`))

	resp, ok := lastMessage(t, h).(JoinResponseMessage)
	if !ok || !resp.Success {
		t.Fatalf("response = %+v, want success", lastMessage(t, h))
	}
	if len(resp.Players) != 1 || resp.Players[0] != "alice" {
		t.Fatalf("players = %v", resp.Players)
	}
	if roster.Count() != 1 {
		t.Fatalf("roster count = %d", roster.Count())
	}
}

func TestGatewayJoinNotifiesExistingPlayers(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	first := &fakeSender{}
	second := &fakeSender{}

	gw.HandleMessage(first, []byte(`{"type":"join_request","name":"alice","password":"secret"}`))
	gw.HandleMessage(second, []byte(`{"type":"join_request","name":"bob","password":"secret"}`))

	evt, ok := lastMessage(t, first).(PlayerEventMessage)
	if !ok || evt.Type != "player_joined" || evt.Name != "bob" {
		t.Fatalf("existing player got %+v, want player_joined bob", lastMessage(t, first))
	}
	// The joiner gets a join_response, not its own join notice.
	if _, ok := lastMessage(t, second).(JoinResponseMessage); !ok {
		t.Fatalf("joiner got %+v, want join_response", lastMessage(t, second))
	}
}

func TestGatewayJoinWrongPassword(t *testing.T) {
	gw, _, roster := newTestGateway(t)
	h := &fakeSender{}

	gw.HandleMessage(h, []byte(`{"type":"join_request","name":"alice","password":"nope"}`))

	resp := lastMessage(t, h).(JoinResponseMessage)
	if resp.Success {
		t.Fatal("join with wrong password succeeded")
	}
	if roster.Count() != 0 {
		t.Fatalf("roster mutated: count = %d", roster.Count())
	}
}

func TestGatewayJoinNameTaken(t *testing.T) {
	gw, _, roster := newTestGateway(t)
	first := &fakeSender{}
	second := &fakeSender{}

	gw.HandleMessage(first, []byte(`{"type":"join_request","name":"alice","password":"secret"}`))
	gw.HandleMessage(second, []byte(`{"type":"join_request","name":"alice","password":"secret"}`))

	resp := lastMessage(t, second).(JoinResponseMessage)
	if resp.Success {
		t.Fatal("duplicate name join succeeded")
	}
	if roster.Count() != 1 {
		t.Fatalf("roster count = %d", roster.Count())
	}
	if handle, _ := roster.HandleOf("alice"); handle != first {
		t.Fatal("original player's handle was replaced")
	}
}

func TestGatewayJoinRejectedWhilePlaying(t *testing.T) {
	gw, session, _ := newTestGateway(t)
	session.StartGame()

	h := &fakeSender{}
	gw.HandleMessage(h, []byte(`{"type":"join_request","name":"late","password":"secret"}`))

	resp := lastMessage(t, h).(JoinResponseMessage)
	if resp.Success {
		t.Fatal("join during game succeeded")
	}
}

func TestGatewayMalformedPayloadDropped(t *testing.T) {
	gw, _, roster := newTestGateway(t)
	h := &fakeSender{}

	gw.HandleMessage(h, []byte(`{not json`))
	gw.HandleMessage(h, []byte(`{"type":"mystery"}`))

	if len(h.sent) != 0 {
		t.Fatalf("garbage produced %d replies", len(h.sent))
	}
	if roster.Count() != 0 {
		t.Fatalf("roster mutated by garbage")
	}
}

func TestGatewayAnswerFromUnregisteredDropped(t *testing.T) {
	gw, session, _ := newTestGateway(t)
	session.StartGame()

	h := &fakeSender{}
	gw.HandleMessage(h, []byte(`{"type":"answer","answer":"A","question_id":"1-0"}`))

	if len(h.sent) != 0 {
		t.Fatal("unregistered answer produced a reply")
	}
}

func TestGatewayChatStampsNameAndBroadcasts(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	gw.HandleMessage(alice, []byte(`{"type":"join_request","name":"alice","password":"secret"}`))
	gw.HandleMessage(bob, []byte(`{"type":"join_request","name":"bob","password":"secret"}`))

	gw.HandleMessage(alice, []byte(`{"type":"chat","text":"hello there","name":"spoofed"}`))

	msg, ok := lastMessage(t, bob).(map[string]any)
	if !ok {
		t.Fatalf("bob got %T, want chat map", lastMessage(t, bob))
	}
	if msg["name"] != "alice" {
		t.Fatalf("chat name = %v, spoofing not overwritten", msg["name"])
	}
	if msg["text"] != "hello there" {
		t.Fatalf("chat text = %v", msg["text"])
	}
}

func TestGatewayDisconnectBroadcastsPlayerLeft(t *testing.T) {
	gw, _, roster := newTestGateway(t)
	alice := &fakeSender{}
	bob := &fakeSender{}

	gw.HandleMessage(alice, []byte(`{"type":"join_request","name":"alice","password":"secret"}`))
	gw.HandleMessage(bob, []byte(`{"type":"join_request","name":"bob","password":"secret"}`))

	gw.HandleDisconnect(alice)

	if roster.Count() != 1 {
		t.Fatalf("roster count = %d after disconnect", roster.Count())
	}
	evt, ok := lastMessage(t, bob).(PlayerEventMessage)
	if !ok || evt.Type != "player_left" || evt.Name != "alice" {
		t.Fatalf("bob got %+v, want player_left alice", lastMessage(t, bob))
	}
}

func TestGatewayDisconnectUnknownHandleIsNoop(t *testing.T) {
	gw, _, roster := newTestGateway(t)
	gw.HandleDisconnect(&fakeSender{})
	if roster.Count() != 0 {
		t.Fatalf("roster count = %d", roster.Count())
	}
}

func TestGatewayBroadcastSurvivesFailedSend(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	broken := &fakeSender{fail: true}
	healthy := &fakeSender{}

	gw.HandleMessage(broken, []byte(`{"type":"join_request","name":"alice","password":"secret"}`))
	gw.HandleMessage(healthy, []byte(`{"type":"join_request","name":"bob","password":"secret"}`))

	gw.NotifyGameReset("test")

	msg, ok := lastMessage(t, healthy).(GameResetMessage)
	if !ok || msg.Message != "test" {
		t.Fatalf("healthy player got %+v, broadcast aborted by failed send", lastMessage(t, healthy))
	}
}
