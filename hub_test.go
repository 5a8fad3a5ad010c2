package main

import "testing"

// The read pump closes a client on its own goroutine while the game loop
// may still be broadcasting to it, so Send after close must fail cleanly
// rather than panic on the closed channel.

func TestClientSendAfterCloseFails(t *testing.T) {
	c := newClient(nil)
	c.close()

	if c.Send("hello") {
		t.Fatal("Send on a closed client reported success")
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	c := newClient(nil)
	c.close()
	c.close()

	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatal("closed client delivered a message")
		}
	default:
		t.Fatal("send channel was not closed")
	}
}

func TestClientSendQueuesUntilClosed(t *testing.T) {
	c := newClient(nil)

	if !c.Send("first") {
		t.Fatal("Send on an open client failed")
	}
	c.close()
	if c.Send("second") {
		t.Fatal("Send succeeded after close")
	}

	if got := <-c.send; got != "first" {
		t.Fatalf("queued message = %v, want first", got)
	}
}

// A connection that dropped before the loop processed its disconnect is
// still in the roster; broadcasting to it must not stop delivery to the
// remaining players.
func TestGatewayBroadcastSurvivesClosedConnection(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	gone := newClient(nil)
	healthy := newClient(nil)

	gw.HandleMessage(gone, []byte(`{"type":"join_request","name":"alice","password":"secret"}`))
	gw.HandleMessage(healthy, []byte(`{"type":"join_request","name":"bob","password":"secret"}`))
	gone.close()

	gw.NotifyGameReset("restarting")

	for {
		select {
		case msg := <-healthy.send:
			if reset, ok := msg.(GameResetMessage); ok && reset.Message == "restarting" {
				return
			}
		default:
			t.Fatal("healthy player never received the broadcast")
		}
	}
}
