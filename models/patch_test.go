package models

import (
	"encoding/json"
	"testing"
)

func TestPatchUnmarshalTriState(t *testing.T) {
	type payload struct {
		Title       Patch[string] `json:"title"`
		Description Patch[string] `json:"description"`
		Offset      Patch[int]    `json:"offset"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"title":"新标题","description":null}`), &p); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}

	if !p.Title.IsSet() || p.Title.Value() != "新标题" {
		t.Error("提供的字段应为已设置状态")
	}
	if !p.Description.IsCleared() || p.Description.IsSet() {
		t.Error("null 字段应为显式清空状态")
	}
	if p.Offset.Touched() {
		t.Error("缺失的字段不应被标记为已触碰")
	}
}

func TestPatchUnmarshalTypedValues(t *testing.T) {
	type payload struct {
		Offset Patch[int]      `json:"offset"`
		Tags   Patch[[]string] `json:"tags"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"offset":0,"tags":["a","b"]}`), &p); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}

	// 零值与缺失必须可区分
	if !p.Offset.IsSet() || p.Offset.Value() != 0 {
		t.Error("显式提供的零值应为已设置状态")
	}
	if !p.Tags.IsSet() || len(p.Tags.Value()) != 2 {
		t.Error("切片字段未正确设置")
	}

	var bad payload
	if err := json.Unmarshal([]byte(`{"offset":"not-a-number"}`), &bad); err == nil {
		t.Error("类型不匹配应报错")
	}
}

func TestPatchConstructors(t *testing.T) {
	set := PatchSet("值")
	if !set.IsSet() || set.IsCleared() || set.Value() != "值" {
		t.Error("PatchSet 构造不正确")
	}
	cleared := PatchCleared[string]()
	if !cleared.IsCleared() || cleared.IsSet() {
		t.Error("PatchCleared 构造不正确")
	}
	var zero Patch[string]
	if zero.Touched() {
		t.Error("零值不应被标记为已触碰")
	}
}
