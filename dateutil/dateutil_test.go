package dateutil

import (
	"testing"
	"time"
)

func TestMonthID(t *testing.T) {
	got := MonthID(time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC))
	if got != "2026-09" {
		t.Fatalf("月識別子は YYYY-MM になるべき: %q", got)
	}
}

func TestMonthOptions(t *testing.T) {
	now := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)
	options := MonthOptions(now, 0, 5)
	if len(options) != 6 {
		t.Fatalf("当月含め 6 件になるべき: %d", len(options))
	}
	if !options[0].IsCurrent {
		t.Fatal("先頭が当月であるべき")
	}
	if options[0].Value != "2026-08" {
		t.Fatalf("当月の識別子であるべき: %q", options[0].Value)
	}
	if options[5].Value != "2027-01" {
		t.Fatalf("年またぎが正しいべき: %q", options[5].Value)
	}
	if options[1].Label != "2026年9月" {
		t.Fatalf("ラベルは年月表記であるべき: %q", options[1].Label)
	}
}

func TestEnumerateMonthDays(t *testing.T) {
	t.Run("月初から月末まで列挙されるべき", func(t *testing.T) {
		days, err := EnumerateMonthDays("2026-02")
		if err != nil {
			t.Fatalf("列挙に失敗すべきではない: %v", err)
		}
		if len(days) != 28 {
			t.Fatalf("2026 年 2 月は 28 日であるべき: %d", len(days))
		}
		if days[0].ISO != "2026-02-01" {
			t.Fatalf("月初から始まるべき: %q", days[0].ISO)
		}
		if days[27].ISO != "2026-02-28" {
			t.Fatalf("月末で終わるべき: %q", days[27].ISO)
		}
		if days[0].WeekdayLabel != "(日)" {
			t.Fatalf("2026-02-01 は日曜であるべき: %q", days[0].WeekdayLabel)
		}
	})

	t.Run("不正な識別子はエラーになるべき", func(t *testing.T) {
		for _, in := range []string{"", "2026", "2026-13", "abc-01"} {
			if _, err := EnumerateMonthDays(in); err == nil {
				t.Fatalf("%q はエラーになるべき", in)
			}
		}
	})
}
