package directory

import (
	"encoding/json"
	"testing"
)

func decodeJSON(t *testing.T, text string) any {
	t.Helper()
	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("テスト用 JSON の復号に失敗すべきではない: %v", err)
	}
	return payload
}

func TestNormalize(t *testing.T) {
	t.Run("コードと名前を持つノードが収集されるべき", func(t *testing.T) {
		payload := decodeJSON(t, `{"marinas": [
			{"marinaCd": "3802", "marinaName": "勝どきマリーナ", "nameKana": "カチドキマリーナ"},
			{"marinaCd": "1201", "marinaName": "葉山マリーナ"}
		]}`)
		entries := Normalize(payload)
		if len(entries) != 2 {
			t.Fatalf("2 件収集されるべき: %d", len(entries))
		}
		if entries[0].Code != "3802" || entries[0].Name != "勝どきマリーナ" {
			t.Fatalf("先頭エントリが保持されるべき: %+v", entries[0])
		}
		if entries[0].NameKana != "カチドキマリーナ" {
			t.Fatalf("カナが拾われるべき: %q", entries[0].NameKana)
		}
	})

	t.Run("同一コードは先勝ちで重複排除されるべき", func(t *testing.T) {
		payload := decodeJSON(t, `[
			{"code": "3802", "name": "勝どきマリーナ"},
			{"code": "3802", "name": "別名マリーナ"}
		]`)
		entries := Normalize(payload)
		if len(entries) != 1 {
			t.Fatalf("1 件に重複排除されるべき: %d", len(entries))
		}
		if entries[0].Name != "勝どきマリーナ" {
			t.Fatalf("先に現れた名前が残るべき: %q", entries[0].Name)
		}
	})

	t.Run("都道府県とエリアは子に継承されるべき", func(t *testing.T) {
		payload := decodeJSON(t, `{
			"prefecture": "東京都",
			"areas": [{
				"area": "湾岸",
				"items": [{"marinaCd": "3802", "marinaName": "勝どきマリーナ"}]
			}]
		}`)
		entries := Normalize(payload)
		if len(entries) != 1 {
			t.Fatalf("1 件収集されるべき: %d", len(entries))
		}
		if entries[0].Prefecture != "東京都" {
			t.Fatalf("都道府県が継承されるべき: %q", entries[0].Prefecture)
		}
		if entries[0].Area != "湾岸" {
			t.Fatalf("エリアが継承されるべき: %q", entries[0].Area)
		}
	})

	t.Run("自前の値を持つ子は継承より優先するべき", func(t *testing.T) {
		payload := decodeJSON(t, `{
			"prefecture": "東京都",
			"items": [{"marinaCd": "1201", "marinaName": "葉山マリーナ", "prefecture": "神奈川県"}]
		}`)
		entries := Normalize(payload)
		if entries[0].Prefecture != "神奈川県" {
			t.Fatalf("自前の都道府県が優先されるべき: %q", entries[0].Prefecture)
		}
	})

	t.Run("コードか名前が欠けるノードは収集されず降下のみされるべき", func(t *testing.T) {
		payload := decodeJSON(t, `{
			"name": "ラベルだけのノード",
			"children": [{"id": "9", "label": "こども"}]
		}`)
		entries := Normalize(payload)
		if len(entries) != 1 {
			t.Fatalf("子だけ収集されるべき: %d", len(entries))
		}
		if entries[0].Code != "9" {
			t.Fatalf("子のコードが使われるべき: %q", entries[0].Code)
		}
	})

	t.Run("循環構造でも停止するべき", func(t *testing.T) {
		node := map[string]any{"code": "1", "name": "A"}
		loop := map[string]any{"items": []any{node}}
		loop["self"] = loop
		entries := Normalize(loop)
		if len(entries) != 1 {
			t.Fatalf("循環があっても 1 件収集されるべき: %d", len(entries))
		}
	})
}
