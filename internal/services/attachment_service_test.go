package services

import (
	"errors"
	"os"
	"strings"
	"testing"

	"noticeboard/internal/models"
)

func TestAllowedFile(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"report.pdf", true},
		{"photo.JPG", true},
		{"archive.tar", true},
		{"clip.webm", true},
		{"noextension", false},
		{"malware.exe", false},
		{"script.sh", false},
		{"trailingdot.", false},
	}
	for _, tc := range cases {
		if got := AllowedFile(tc.name); got != tc.ok {
			t.Errorf("AllowedFile(%q) = %v, want %v", tc.name, got, tc.ok)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\notes.txt`, "notes.txt"},
		{"my photo (1).png", "my_photo__1_.png"},
		{"...", "file"},
		{"", "file"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAttachmentUpload(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAttachmentService(db, t.TempDir(), 1<<20)
	author := seedAuthor(t, db)
	notifSvc := NewNotificationService(db)
	n, err := notifSvc.Create("Host", "content", "", author.ID, nil)
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}

	att, err := svc.Upload(strings.NewReader("hello"), "Report Final.PDF", "application/pdf", 5, &n.ID)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if att.OriginalFilename != "Report_Final.PDF" {
		t.Fatalf("original filename: %q", att.OriginalFilename)
	}
	if !strings.HasSuffix(att.Filename, ".pdf") {
		t.Fatalf("stored extension must be lowercased: %q", att.Filename)
	}
	if att.Filename == att.OriginalFilename {
		t.Fatalf("stored filename must not be the original")
	}
	if att.FileSize != 5 {
		t.Fatalf("file size: %d", att.FileSize)
	}
	data, err := os.ReadFile(att.FilePath)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("stored content: %q", data)
	}

	// Same original name again gets a distinct stored name.
	again, err := svc.Upload(strings.NewReader("hello"), "Report Final.PDF", "application/pdf", 5, &n.ID)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if again.Filename == att.Filename {
		t.Fatalf("stored names must be unique")
	}

	// No notification reference is allowed.
	orphan, err := svc.Upload(strings.NewReader("x"), "loose.txt", "", 1, nil)
	if err != nil {
		t.Fatalf("orphan upload: %v", err)
	}
	if orphan.NotificationID != nil {
		t.Fatalf("orphan must have nil notification_id")
	}
	if orphan.MimeType != "application/octet-stream" {
		t.Fatalf("mime fallback: %q", orphan.MimeType)
	}
}

func TestAttachmentUploadRejections(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	svc := NewAttachmentService(db, dir, 10)

	if _, err := svc.Upload(strings.NewReader("x"), "  ", "", 1, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name: %v", err)
	}
	if _, err := svc.Upload(strings.NewReader("x"), "tool.exe", "", 1, nil); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("bad extension: %v", err)
	}
	if _, err := svc.Upload(strings.NewReader("x"), "big.txt", "", 11, nil); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("declared too large: %v", err)
	}
	// Declared size lies: the actual stream is over the cap.
	if _, err := svc.Upload(strings.NewReader(strings.Repeat("a", 20)), "big.txt", "", 5, nil); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("actual too large: %v", err)
	}
	missing := uint(999)
	if _, err := svc.Upload(strings.NewReader("x"), "ok.txt", "", 1, &missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing notification: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected uploads must leave no files, found %d", len(entries))
	}
}

func TestAttachmentDownload(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAttachmentService(db, t.TempDir(), 1<<20)

	att, err := svc.Upload(strings.NewReader("data"), "notes.txt", "text/plain", 4, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	got, err := svc.Download(att.Filename)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if got.ID != att.ID {
		t.Fatalf("wrong attachment: %d", got.ID)
	}

	if _, err := svc.Download("nosuchfile.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown filename: %v", err)
	}

	// Metadata present but file gone from disk is the distinct removed case.
	if err := os.Remove(att.FilePath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Download(att.Filename); !errors.Is(err, ErrFileRemoved) {
		t.Fatalf("expected ErrFileRemoved, got %v", err)
	}
}

func TestAttachmentDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAttachmentService(db, t.TempDir(), 1<<20)

	att, err := svc.Upload(strings.NewReader("data"), "notes.txt", "text/plain", 4, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.Delete(att.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(att.FilePath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file must be removed, stat err=%v", err)
	}
	if err := svc.Delete(att.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}

	// A row whose file already vanished still deletes cleanly.
	att2, err := svc.Upload(strings.NewReader("data"), "more.txt", "text/plain", 4, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := os.Remove(att2.FilePath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Delete(att2.ID); err != nil {
		t.Fatalf("delete without file: %v", err)
	}
}

func TestAttachmentListByNotification(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAttachmentService(db, t.TempDir(), 1<<20)
	author := seedAuthor(t, db)
	notifSvc := NewNotificationService(db)

	pub, err := notifSvc.Create("Published", "content", "", author.ID, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	draft, err := notifSvc.Create("Draft", "content", "", author.ID, boolPtr(false))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := svc.Upload(strings.NewReader("a"), "a.txt", "", 1, &pub.ID); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.Upload(strings.NewReader("b"), "b.txt", "", 1, &pub.ID); err != nil {
		t.Fatalf("upload: %v", err)
	}

	list, err := svc.ListByNotification(pub.ID, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len=%d, want 2", len(list))
	}

	// Empty is a slice, not nil, not an error.
	var none []models.Attachment
	none, err = svc.ListByNotification(draft.ID, true)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty slice, got %#v", none)
	}

	// Drafts are invisible without privilege.
	if _, err := svc.ListByNotification(draft.ID, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("draft must read as not found, got %v", err)
	}
	if _, err := svc.ListByNotification(999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing notification: %v", err)
	}
}
