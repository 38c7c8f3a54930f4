package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garrison/model"
)

func sampleTable() model.LimitTable {
	return model.LimitTable{
		Positions: map[string]model.CategoryLimits{
			"军需官": {Caps: map[string]int{"医疗": 20}, WeaponAllowlist: []string{"手枪", "步枪"}},
		},
		Ranks: map[string]model.CategoryLimits{
			"中士": {Caps: map[string]int{"医疗": 10}, WeaponAllowlist: []string{"手枪"}},
		},
		Default: model.CategoryLimits{Caps: map[string]int{"医疗": 5}},
	}
}

func TestResolveTierOrder(t *testing.T) {
	table := sampleTable()

	// 职务优先于军衔
	limits := Resolve(table, "军需官", "中士")
	assert.Equal(t, 20, limits.Caps["医疗"])

	limits = Resolve(table, "文书", "中士")
	assert.Equal(t, 10, limits.Caps["医疗"])

	limits = Resolve(table, "", "")
	assert.Equal(t, 5, limits.Caps["医疗"])
}

func TestValidateClampsToCap(t *testing.T) {
	limits := sampleTable().Ranks["中士"]

	stored, advisory, err := Validate(limits, "医疗", "绷带", 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, stored)
	assert.Empty(t, advisory)

	// 超限时截断到余量并提示
	stored, advisory, err = Validate(limits, "医疗", "绷带", 8, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, stored)
	assert.NotEmpty(t, advisory)

	// 已达上限直接拒绝
	_, _, err = Validate(limits, "医疗", "绷带", 1, 10)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidateWeaponAllowlist(t *testing.T) {
	limits := sampleTable().Ranks["中士"]

	stored, advisory, err := Validate(limits, "武器", "手枪", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Empty(t, advisory)

	var verr *ValidationError
	_, _, err = Validate(limits, "武器", "步枪", 1, 0)
	require.ErrorAs(t, err, &verr)
}

func TestValidateRejectsNonPositive(t *testing.T) {
	var verr *ValidationError
	_, _, err := Validate(sampleTable().Default, "医疗", "绷带", 0, 0)
	require.ErrorAs(t, err, &verr)
	_, _, err = Validate(sampleTable().Default, "医疗", "绷带", -3, 0)
	require.ErrorAs(t, err, &verr)
}

func TestValidateUncappedCategory(t *testing.T) {
	stored, advisory, err := Validate(sampleTable().Default, "文件", "登记表", 99, 0)
	require.NoError(t, err)
	assert.Equal(t, 99, stored)
	assert.Empty(t, advisory)
}
