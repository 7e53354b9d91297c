package nan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionPubSubIDSetOnce(t *testing.T) {
	session := newSessionState(1, SessionKindPublish, &fakeSessionCallback{})

	_, established := session.PubSubID()
	assert.False(t, established, "a fresh session is pending creation")

	session.setPubSubID(15)
	id, established := session.PubSubID()
	require.True(t, established)
	assert.Equal(t, uint32(15), id)

	// later attempts never move the id, even after failed updates
	session.setPubSubID(99)
	id, _ = session.PubSubID()
	assert.Equal(t, uint32(15), id)
}

func TestSessionKindFixed(t *testing.T) {
	publish := newSessionState(1, SessionKindPublish, &fakeSessionCallback{})
	subscribe := newSessionState(2, SessionKindSubscribe, &fakeSessionCallback{})

	assert.Equal(t, SessionKindPublish, publish.Kind())
	assert.Equal(t, SessionKindSubscribe, subscribe.Kind())
	assert.Equal(t, "PUBLISH", publish.Kind().String())
	assert.Equal(t, "SUBSCRIBE", subscribe.Kind().String())
}

func TestPeerTableFreshestMacWins(t *testing.T) {
	table := newPeerTable()

	_, ok := table.Lookup(22)
	assert.False(t, ok)

	macA := MacAddress{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	macB := MacAddress{0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b}

	table.Update(22, macA)
	got, ok := table.Lookup(22)
	require.True(t, ok)
	assert.Equal(t, macA, got)

	table.Update(22, macB)
	got, ok = table.Lookup(22)
	require.True(t, ok)
	assert.Equal(t, macB, got)
	assert.Equal(t, 1, table.Len())
}

func TestClientSessionBookkeeping(t *testing.T) {
	client := newClientState(300, nil)

	first := client.mintSessionID()
	second := client.mintSessionID()
	assert.Greater(t, second, first)

	publish := newSessionState(first, SessionKindPublish, &fakeSessionCallback{})
	publish.setPubSubID(88)
	subscribe := newSessionState(second, SessionKindSubscribe, &fakeSessionCallback{})
	subscribe.setPubSubID(89)
	client.addSession(publish)
	client.addSession(subscribe)

	got, ok := client.session(first)
	require.True(t, ok)
	assert.Same(t, publish, got)

	bySub, ok := client.sessionByPubSubID(88, SessionKindPublish)
	require.True(t, ok)
	assert.Same(t, publish, bySub)

	_, ok = client.sessionByPubSubID(88, SessionKindSubscribe)
	assert.False(t, ok, "pubSub lookup honors the session kind")

	list := client.sessionList()
	require.Len(t, list, 2)
	assert.Same(t, publish, list[0])
	assert.Same(t, subscribe, list[1])

	assert.True(t, client.removeSession(first))
	assert.False(t, client.removeSession(first))
	_, ok = client.session(first)
	assert.False(t, ok)
}

func TestMacAddressParseAndFormat(t *testing.T) {
	mac, err := ParseMacAddress("00:01:02:03:04:05")
	require.NoError(t, err)
	assert.Equal(t, MacAddress{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, mac)
	assert.Equal(t, "00:01:02:03:04:05", mac.String())

	mac, err = ParseMacAddress("06-07-08-09-0A-0B")
	require.NoError(t, err)
	assert.Equal(t, MacAddress{0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b}, mac)

	for _, bad := range []string{"", "00:01:02:03:04", "00:01:02:03:04:0g", "000102030405aabb"} {
		_, err := ParseMacAddress(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
