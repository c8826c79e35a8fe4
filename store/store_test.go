package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"akifune.dev/availability"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("データベースを開けるべき: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := RunMigrations(db); err != nil {
		t.Fatalf("マイグレーションが成功すべき: %v", err)
	}
	return New(db)
}

func sampleResult() *availability.Result {
	return &availability.Result{
		Groups: []availability.Group{
			{
				Title: "SR320FB",
				Slots: []*availability.Slot{
					{TimeText: "09:00〜12:00", Status: availability.Classify("◯"), SortKey: 540, BoatName: "SR320FB"},
					{TimeText: "13:00〜16:00", Status: availability.Classify("×"), SortKey: 780, BoatName: "SR320FB"},
				},
			},
			{
				Title: "時間帯",
				Slots: []*availability.Slot{
					{TimeText: "10:00〜15:00", Status: availability.Classify("残りわずか"), SortKey: 600},
				},
			},
		},
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("データベースを開けるべき: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("初回のマイグレーションが成功すべき: %v", err)
	}
	if err := RunMigrations(db); err != nil {
		t.Fatalf("再実行してもエラーにならないべき: %v", err)
	}
}

func TestSaveDayAndDaySlots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveDay(ctx, "3802", "2026-09-15", sampleResult())
	if err != nil {
		t.Fatalf("保存が成功すべき: %v", err)
	}
	if saved != 3 {
		t.Errorf("3件保存されるべき: got %d", saved)
	}

	rows, err := s.DaySlots(ctx, "3802", "2026-09-15")
	if err != nil {
		t.Fatalf("取得が成功すべき: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("3件取得されるべき: got %d", len(rows))
	}
	if rows[0].GroupTitle != "SR320FB" || rows[0].TimeText != "09:00〜12:00" {
		t.Errorf("グループ・開始時刻順に並ぶべき: got %+v", rows[0])
	}
	if rows[0].StatusKey != string(availability.StatusVacant) {
		t.Errorf("空き状況キーが保存されるべき: got %q", rows[0].StatusKey)
	}
	if rows[0].StatusLabel != "空き" {
		t.Errorf("空き状況ラベルが保存されるべき: got %q", rows[0].StatusLabel)
	}
}

func TestSaveDayReplacesPreviousSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveDay(ctx, "3802", "2026-09-15", sampleResult()); err != nil {
		t.Fatalf("初回保存が成功すべき: %v", err)
	}

	// Second fetch sees only one slot; the old rows must not linger.
	update := &availability.Result{
		Groups: []availability.Group{
			{
				Title: "SR320FB",
				Slots: []*availability.Slot{
					{TimeText: "09:00〜12:00", Status: availability.Classify("×"), SortKey: 540, BoatName: "SR320FB"},
				},
			},
		},
	}
	if _, err := s.SaveDay(ctx, "3802", "2026-09-15", update); err != nil {
		t.Fatalf("再保存が成功すべき: %v", err)
	}

	rows, err := s.DaySlots(ctx, "3802", "2026-09-15")
	if err != nil {
		t.Fatalf("取得が成功すべき: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("最新スナップショットのみ残るべき: got %d", len(rows))
	}
	if rows[0].StatusKey != string(availability.StatusFull) {
		t.Errorf("新しい状態で上書きされるべき: got %q", rows[0].StatusKey)
	}
}

func TestSaveDayKeepsOtherDates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveDay(ctx, "3802", "2026-09-15", sampleResult()); err != nil {
		t.Fatalf("保存が成功すべき: %v", err)
	}
	if _, err := s.SaveDay(ctx, "3802", "2026-09-16", sampleResult()); err != nil {
		t.Fatalf("別日の保存が成功すべき: %v", err)
	}

	rows, err := s.DaySlots(ctx, "3802", "2026-09-15")
	if err != nil {
		t.Fatalf("取得が成功すべき: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("別日の保存が既存日に影響しないべき: got %d", len(rows))
	}
}

func TestSaveDayNilResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveDay(ctx, "3802", "2026-09-15", sampleResult()); err != nil {
		t.Fatalf("保存が成功すべき: %v", err)
	}
	saved, err := s.SaveDay(ctx, "3802", "2026-09-15", nil)
	if err != nil {
		t.Fatalf("nil でもエラーにならないべき: %v", err)
	}
	if saved != 0 {
		t.Errorf("nil の場合は0件であるべき: got %d", saved)
	}
	rows, err := s.DaySlots(ctx, "3802", "2026-09-15")
	if err != nil {
		t.Fatalf("取得が成功すべき: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("nil 保存で既存スナップショットが消えるべき: got %d", len(rows))
	}
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.StartRun(ctx, "3802", "2026-09")
	if err != nil {
		t.Fatalf("実行記録を開始できるべき: %v", err)
	}
	if err := s.CompleteRun(ctx, id, 30, 42); err != nil {
		t.Fatalf("完了を記録できるべき: %v", err)
	}

	runs, err := s.RecentRuns(ctx, "3802", 10)
	if err != nil {
		t.Fatalf("実行記録を取得できるべき: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("1件取得されるべき: got %d", len(runs))
	}
	r := runs[0]
	if r.Status != RunCompleted || r.DaysFetched != 30 || r.SlotsFound != 42 {
		t.Errorf("完了状態と件数が記録されるべき: got %+v", r)
	}
}

func TestFailRunRecordsError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.StartRun(ctx, "3802", "2026-09")
	if err != nil {
		t.Fatalf("実行記録を開始できるべき: %v", err)
	}
	if err := s.FailRun(ctx, id, 3, 5, errors.New("upstream down")); err != nil {
		t.Fatalf("失敗を記録できるべき: %v", err)
	}

	runs, err := s.RecentRuns(ctx, "3802", 1)
	if err != nil {
		t.Fatalf("実行記録を取得できるべき: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != RunFailed {
		t.Fatalf("失敗状態が記録されるべき: got %+v", runs)
	}
	if runs[0].ErrorMessage != "upstream down" {
		t.Errorf("エラーメッセージが記録されるべき: got %q", runs[0].ErrorMessage)
	}
}

func TestRecentSlotsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveDay(ctx, "3802", "2026-09-15", sampleResult()); err != nil {
		t.Fatalf("保存が成功すべき: %v", err)
	}
	rows, err := s.RecentSlots(ctx, "3802", 2)
	if err != nil {
		t.Fatalf("取得が成功すべき: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("件数制限が効くべき: got %d", len(rows))
	}
}
