package warehouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMergesLines(t *testing.T) {
	s := NewStore(time.Hour)
	holder := Holder{Name: "Ivan", Static: "123-456", Rank: "中士"}

	total := s.Add("u1", "医疗", "绷带", 3, holder)
	assert.Equal(t, 3, total)
	total = s.Add("u1", "医疗", "绷带", 2, holder)
	assert.Equal(t, 5, total)
	s.Add("u1", "武器", "手枪", 1, holder)

	cart := s.Get("u1")
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, holder, cart.Items[0].Holder)
	assert.Equal(t, 5, s.Existing("u1", "医疗", "绷带"))
	assert.Equal(t, 0, s.Existing("u1", "医疗", "止血钳"))
}

func TestCartRemoveByIndex(t *testing.T) {
	s := NewStore(time.Hour)
	s.Add("u1", "医疗", "绷带", 1, Holder{})
	s.Add("u1", "装备", "头盔", 1, Holder{})

	var verr *ValidationError
	err := s.Remove("u1", 3)
	require.ErrorAs(t, err, &verr)
	err = s.Remove("u1", 0)
	require.ErrorAs(t, err, &verr)
	err = s.Remove("u2", 1)
	require.ErrorAs(t, err, &verr)

	// 序号从 1 开始
	require.NoError(t, s.Remove("u1", 1))
	cart := s.Get("u1")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "头盔", cart.Items[0].Name)
}

func TestCartClearAndSweep(t *testing.T) {
	s := NewStore(time.Minute)
	s.Add("u1", "医疗", "绷带", 1, Holder{})
	s.Add("u2", "医疗", "绷带", 1, Holder{})

	s.Clear("u1")
	assert.Nil(t, s.Get("u1"))

	s.carts["u2"].UpdatedAt = time.Now().Add(-2 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Nil(t, s.Get("u2"))
}
