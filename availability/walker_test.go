package availability

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

func TestExtractGroups(t *testing.T) {
	t.Run("スロット配列が 1 グループになるべき", func(t *testing.T) {
		payload := decodeJSON(t, `{"a": [{"status": "◯", "time": "10:00-11:00"}]}`)
		groups := ExtractGroups(payload)
		if len(groups) != 1 {
			t.Fatalf("1 グループになるべき: %d", len(groups))
		}
		if len(groups[0].Slots) != 1 {
			t.Fatalf("1 スロットになるべき: %d", len(groups[0].Slots))
		}
		slot := groups[0].Slots[0]
		if slot.Status.Key != StatusVacant {
			t.Fatalf("空きになるべき: %s", slot.Status.Key)
		}
		if slot.TimeText != "10:00〜11:00" {
			t.Fatalf("時間が正規化されるべき: %q", slot.TimeText)
		}
	})

	t.Run("深くネストしても発見されるべき", func(t *testing.T) {
		payload := decodeJSON(t, `{"data": {"result": {"items": [{"time": "9:00", "status": "×"}]}}}`)
		groups := ExtractGroups(payload)
		if len(groups) != 1 {
			t.Fatalf("3 階層下でも 1 グループになるべき: %d", len(groups))
		}
	})

	t.Run("タイトルは名前系フィールドから推測されるべき", func(t *testing.T) {
		payload := decodeJSON(t, `{"boats": [{"boatName": "SR320", "slots": [{"time": "10:00", "status": "◯"}]}]}`)
		groups := ExtractGroups(payload)
		if len(groups) != 1 {
			t.Fatalf("1 グループになるべき: %d", len(groups))
		}
		if groups[0].Title != "SR320" {
			t.Fatalf("艇名がタイトルになるべき: %q", groups[0].Title)
		}
	})

	t.Run("タイトル不明時は既定タイトルになるべき", func(t *testing.T) {
		payload := decodeJSON(t, `[[{"time": "10:00", "status": "◯"}]]`)
		groups := ExtractGroups(payload)
		if len(groups) != 1 {
			t.Fatalf("1 グループになるべき: %d", len(groups))
		}
		if groups[0].Title != DefaultGroupTitle {
			t.Fatalf("既定タイトルになるべき: %q", groups[0].Title)
		}
	})

	t.Run("同名グループは統合されソートされるべき", func(t *testing.T) {
		payload := decodeJSON(t, `{
			"am": {"boatName": "SR320", "slots": [{"time": "13:00", "status": "◯"}]},
			"pm": {"boatName": "SR320", "slots": [{"time": "9:00", "status": "×"}]}
		}`)
		groups := ExtractGroups(payload)
		if len(groups) != 1 {
			t.Fatalf("同名グループは 1 つに統合されるべき: %d", len(groups))
		}
		if len(groups[0].Slots) != 2 {
			t.Fatalf("スロットが連結されるべき: %d", len(groups[0].Slots))
		}
		if groups[0].Slots[0].TimeText != "09:00" {
			t.Fatalf("ソートキー昇順になるべき: %q", groups[0].Slots[0].TimeText)
		}
	})

	t.Run("キーなしスロットは末尾に置かれるべき", func(t *testing.T) {
		payload := decodeJSON(t, `{"a": [
			{"time": "終日", "status": "◯"},
			{"time": "10:00", "status": "◯"}
		]}`)
		groups := ExtractGroups(payload)
		if len(groups) != 1 {
			t.Fatalf("1 グループになるべき: %d", len(groups))
		}
		if groups[0].Slots[len(groups[0].Slots)-1].TimeText != "終日" {
			t.Fatalf("キーのないスロットが末尾になるべき: %q", groups[0].Slots[len(groups[0].Slots)-1].TimeText)
		}
	})

	t.Run("循環構造でも停止するべき", func(t *testing.T) {
		child := map[string]any{"time": "10:00", "status": "◯"}
		loop := map[string]any{"items": []any{child}}
		loop["self"] = loop
		groups := ExtractGroups(loop)
		if len(groups) != 1 {
			t.Fatalf("循環があっても 1 グループになるべき: %d", len(groups))
		}
	})

	t.Run("スカラーだけの payload は空になるべき", func(t *testing.T) {
		if groups := ExtractGroups(decodeJSON(t, `{"count": 3, "ok": true}`)); len(groups) != 0 {
			t.Fatalf("スロットのない payload は空になるべき: %d", len(groups))
		}
	})
}
