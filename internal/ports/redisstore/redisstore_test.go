package redisstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyNamespacing(t *testing.T) {
	s := New(nil, "sevens")
	assert.Equal(t, "sevens:rooms/ABCD/board", s.Key("rooms/ABCD/board"))

	bare := New(nil, "")
	assert.Equal(t, "rooms/ABCD/board", bare.Key("rooms/ABCD/board"))
}
