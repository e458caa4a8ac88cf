package services

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/thisdotrob/family-monolith/models"
)

// NormalizeRule 归一化存储的重复规则：无时刻锚点时剔除
// BYHOUR/BYMINUTE/BYSECOND 子句，纯日期重复里它们没有意义。
func NormalizeRule(rule string, hasTime bool) string {
	if hasTime {
		return rule
	}
	parts := strings.Split(rule, ";")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		up := strings.ToUpper(p)
		if strings.HasPrefix(up, "BYHOUR=") ||
			strings.HasPrefix(up, "BYMINUTE=") ||
			strings.HasPrefix(up, "BYSECOND=") {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ";")
}

// AnchorTime 由锚点日期和可选时刻构造时区内的起始时间点。
// 落在夏令时间隙中的本地时间按既定策略向后顺延到下一个有效时间点。
func AnchorTime(dateStr string, timeMinutes *int, loc *time.Location) (time.Time, error) {
	if timeMinutes != nil && (*timeMinutes < 0 || *timeMinutes > 1439) {
		return time.Time{}, models.ValidationError("dtstartTimeMinutes 必须在 0 到 1439 之间")
	}
	anchor, ok := CombineDateTime(dateStr, timeMinutes, loc)
	if !ok {
		return time.Time{}, models.ValidationError("无效的 dtstartDate，应为 YYYY-MM-DD 格式")
	}
	return anchor, nil
}

// ValidateRule 校验规则语法，创建和更新共用
func ValidateRule(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return models.ValidationError("无效的重复规则")
	}
	if _, err := rrule.StrToROption(rule); err != nil {
		return models.ValidationError("无效的重复规则")
	}
	return nil
}

// ExpandRule 展开重复规则为惰性的递增时间点序列。
// 同一模板重复展开得到完全相同的序列，迭代器之间无共享状态。
func ExpandRule(rule string, dateStr string, timeMinutes *int, loc *time.Location) (rrule.Next, error) {
	anchor, err := AnchorTime(dateStr, timeMinutes, loc)
	if err != nil {
		return nil, err
	}

	opt, err := rrule.StrToROptionInLocation(rule, loc)
	if err != nil {
		return nil, models.ValidationError("无效的重复规则")
	}
	opt.Dtstart = anchor

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, models.ValidationError("无效的重复规则")
	}

	return r.Iterator(), nil
}
