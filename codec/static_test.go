package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatic(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"123456", "123-456", true},
		{"123-456", "123-456", true},
		{" 12 3456 ", "123-456", true},
		{"1234", "1-234", true},
		{"123", "123", true},
		{"7", "7", true},
		{"", "", false},
		{"1234567", "", false},
		{"abc", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeStatic(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

func TestStaticDigits(t *testing.T) {
	assert.Equal(t, "123456", StaticDigits("123-456"))
	assert.Equal(t, "", StaticDigits("---"))
}
