package drives

import "testing"

func TestParseWmicCSV(t *testing.T) {
	out := "Node,FreeSpace,Name,Size,VolumeName\r\n" +
		"DESKTOP-1,104857600,C:,256060514304,Windows\r\n" +
		"DESKTOP-1,524288000,E:,1000204886016,Backup\r\n" +
		"\r\n"

	drives := parseWmicCSV(out)
	if len(drives) != 2 {
		t.Fatalf("got %d drives, want 2", len(drives))
	}

	c := drives[0]
	if c.Name != "C:" || c.VolumeName != "Windows" {
		t.Errorf("unexpected first drive: %+v", c)
	}
	if c.Size != 256060514304 || c.FreeSpace != 104857600 {
		t.Errorf("unexpected sizes: %+v", c)
	}

	e := drives[1]
	if e.Name != "E:" || e.VolumeName != "Backup" {
		t.Errorf("unexpected second drive: %+v", e)
	}
}

func TestParseWmicCSVEmptyOutput(t *testing.T) {
	if drives := parseWmicCSV("Node,Name\n"); drives != nil {
		t.Errorf("expected nil for header-only output, got %+v", drives)
	}
}

func TestParseDF(t *testing.T) {
	out := `Filesystem     1024-blocks      Used Available Capacity Mounted on
/dev/sda2        479151816 227943736 226793352      51% /
tmpfs              8101060         0   8101060       0% /dev/shm
/dev/sdb1        976283900 102400000 873883900      11% /mnt/backup
`

	drives := parseDF(out)
	if len(drives) != 2 {
		t.Fatalf("got %d drives, want 2 (pseudo filesystems skipped)", len(drives))
	}

	root := drives[0]
	if root.Name != "/" || root.VolumeName != "/dev/sda2" {
		t.Errorf("unexpected root drive: %+v", root)
	}
	if root.Size != 479151816*1024 {
		t.Errorf("size = %d, want %d", root.Size, int64(479151816)*1024)
	}
	if root.FreeSpace != 226793352*1024 {
		t.Errorf("free = %d, want %d", root.FreeSpace, int64(226793352)*1024)
	}

	if drives[1].Name != "/mnt/backup" {
		t.Errorf("unexpected second drive: %+v", drives[1])
	}
}
