package models

import (
	"bytes"
	"encoding/json"
)

// Patch 部分更新字段的三态包装：未提供 / 显式置空 / 设置新值。
// JSON 中字段缺失时 UnmarshalJSON 不会被调用，零值即"未提供"；
// 字段为 null 表示显式清空。
type Patch[T any] struct {
	value   T
	set     bool
	cleared bool
}

// PatchSet 构造已设置的字段
func PatchSet[T any](v T) Patch[T] {
	return Patch[T]{value: v, set: true}
}

// PatchCleared 构造显式清空的字段
func PatchCleared[T any]() Patch[T] {
	return Patch[T]{cleared: true}
}

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		p.cleared = true
		return nil
	}
	if err := json.Unmarshal(data, &p.value); err != nil {
		return err
	}
	p.set = true
	return nil
}

// IsSet 是否提供了新值
func (p Patch[T]) IsSet() bool {
	return p.set
}

// IsCleared 是否显式置空
func (p Patch[T]) IsCleared() bool {
	return p.cleared
}

// Touched 字段是否出现在请求中（设值或置空）
func (p Patch[T]) Touched() bool {
	return p.set || p.cleared
}

// Value 返回已设置的值，未设置时返回零值
func (p Patch[T]) Value() T {
	return p.value
}
