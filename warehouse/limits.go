package warehouse

import (
	"fmt"
	"slices"

	"garrison/model"
)

// weaponCategory is the category whose items are gated by an allow-list
// instead of only a quantity cap.
const weaponCategory = "武器"

// Resolve picks the limit tier for a member: position first, then rank, then
// the default tier. 职务比军衔优先, 与仓库条例一致。
func Resolve(table model.LimitTable, position, rank string) model.CategoryLimits {
	if position != "" {
		if limits, ok := table.Positions[position]; ok {
			return limits
		}
	}
	if rank != "" {
		if limits, ok := table.Ranks[rank]; ok {
			return limits
		}
	}
	return table.Default
}

// Validate checks one cart addition against the tier limits.
//
// The returned stored quantity is what actually goes into the cart: requests
// beyond the cap are clamped, not rejected, and the advisory explains the
// clamp to the user. Weapons outside the allow-list are rejected outright.
func Validate(limits model.CategoryLimits, category, item string, qty, existing int) (stored int, advisory string, err error) {
	if qty <= 0 {
		return 0, "", &ValidationError{Reason: "数量必须是正整数"}
	}
	if category == weaponCategory && !slices.Contains(limits.WeaponAllowlist, item) {
		return 0, "", &ValidationError{Reason: fmt.Sprintf("你的权限等级无法申请 %s", item)}
	}

	cap, capped := limits.Caps[category]
	if !capped {
		return qty, "", nil
	}
	remaining := cap - existing
	if remaining <= 0 {
		return 0, "", &ValidationError{Reason: fmt.Sprintf("%s 类物资已达上限 %d", category, cap)}
	}
	if qty > remaining {
		return remaining, fmt.Sprintf("%s 类物资上限为 %d, 已将数量调整为 %d", category, cap, remaining), nil
	}
	return qty, "", nil
}
