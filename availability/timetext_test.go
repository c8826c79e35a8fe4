package availability

import "testing"

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9時5分〜10時30分", "09:05〜10:30"},
		{"10:00-11:00", "10:00〜11:00"},
		{"10:00~11:00", "10:00〜11:00"},
		{"10:00ー11:00", "10:00〜11:00"},
		{"9:00", "09:00"},
		{"9時", "09:00"},
		{" 13:30 ", "13:30"},
		{"13:30〜", "13:30"},
		{"〜13:30", "13:30"},
		{"900", "09:00"},
		{"1030", "10:30"},
		{"900〜1700", "09:00〜17:00"},
		{"25時", "25時"},
		{"90", "90"},
		{"10:75", "10:75"},
		{"終日", "終日"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeTime(c.in); got != c.want {
			t.Fatalf("%q は %q に正規化されるべき: %q", c.in, c.want, got)
		}
	}
}

func TestBuildSortKey(t *testing.T) {
	t.Run("先頭の時刻が分換算されるべき", func(t *testing.T) {
		key, ok := BuildSortKey("09:05〜10:30")
		if !ok {
			t.Fatal("キーが得られるべき")
		}
		if key != 9*60+5 {
			t.Fatalf("開始時刻が使われるべき: %d", key)
		}
	})

	t.Run("時刻のない文字列はキーなしになるべき", func(t *testing.T) {
		if _, ok := BuildSortKey("終日"); ok {
			t.Fatal("キーは得られないべき")
		}
	})

	t.Run("正規化後のキーは時系列で単調増加するべき", func(t *testing.T) {
		inputs := []string{"8時〜9時", "9時30分〜10時", "13:00-14:00", "20時15分"}
		prev := -1
		for _, in := range inputs {
			key, ok := BuildSortKey(NormalizeTime(in))
			if !ok {
				t.Fatalf("%q からキーが得られるべき", in)
			}
			if key < prev {
				t.Fatalf("キーが単調増加するべき: %q -> %d (前=%d)", in, key, prev)
			}
			prev = key
		}
	})
}
