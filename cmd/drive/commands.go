package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fruitsalade/drive/internal/config"
	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
)

var errNoFolder = errors.New("no folder open, use cd first")

type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

// run executes one command and reports whether it succeeded.
func (a *app) run(ctx context.Context, cmd string, args []string) bool {
	if cmd == "shell" {
		return a.shell(ctx)
	}
	err := a.exec(ctx, cmd, args, false)
	a.printAlerts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	return true
}

// result turns a terminal notification into an error.
func result(n notify.Notification) error {
	if !n.Failed() {
		return nil
	}
	if n.Err != nil {
		return n.Err
	}
	return errors.New(strings.ToLower(string(n.Type)))
}

// exec runs cmd. In the shell, commands act on the open folder; otherwise
// the folder is given as the first argument.
func (a *app) exec(ctx context.Context, cmd string, args []string, interactive bool) error {
	switch cmd {
	case "ls", "cd":
		id := models.RootDirID
		if len(args) > 0 {
			id = args[0]
		}
		if id == ".." {
			id = models.RootDirID
			if p := a.state.State().Parent; p != nil {
				id = p.ID
			}
		}
		if err := result(a.drive.OpenFolder(ctx, id)); err != nil {
			return err
		}
		a.printListing()

	case "trash":
		if err := result(a.drive.OpenTrash(ctx)); err != nil {
			return err
		}
		a.printListing()

	case "recent":
		if err := result(a.drive.FetchRecent(ctx)); err != nil {
			return err
		}
		a.printListing()

	case "more":
		v := a.state.FolderView()
		if v == nil {
			return errNoFolder
		}
		if err := result(a.drive.FetchMoreFiles(ctx, a.drive.NextPage(v))); err != nil {
			return err
		}
		a.printListing()

	case "sort":
		if !interactive {
			if len(args) < 2 {
				return usageError("sort <folder-id> <name|updated_at|size> [asc|desc]")
			}
			if err := a.openIfNeeded(ctx, args[0]); err != nil {
				return err
			}
			args = args[1:]
		}
		if len(args) < 1 {
			return usageError("sort <name|updated_at|size> [asc|desc]")
		}
		v := a.state.FolderView()
		if v == nil {
			return errNoFolder
		}
		order := ""
		if len(args) > 1 {
			order = args[1]
		}
		if err := result(a.drive.SortFolder(ctx, v.Folder.ID, args[0], order)); err != nil {
			return err
		}
		a.printListing()

	case "mkdir":
		if !interactive {
			if len(args) < 2 {
				return usageError("mkdir <parent-id> <name>")
			}
			if err := a.openIfNeeded(ctx, args[0]); err != nil {
				return err
			}
			args = args[1:]
		}
		if len(args) < 1 {
			return usageError("mkdir <name>")
		}
		v := a.state.FolderView()
		if v == nil {
			return errNoFolder
		}
		placeholder := a.drive.AddFolder(v.Folder.ID)
		n, err := a.drive.CreateFolder(ctx, a.state.FolderView(), strings.Join(args, " "), placeholder.TempID)
		if err != nil {
			a.drive.AbortAddFolder(placeholder.TempID, false)
			return err
		}
		fmt.Printf("Created %s (%s)\n", n.Folder.Name, n.Folder.ID)

	case "rm":
		files, err := a.targets(ctx, args, "rm <id>...")
		if err != nil {
			return err
		}
		n := a.drive.TrashFiles(ctx, files)
		if err := result(n); err != nil {
			return err
		}
		fmt.Printf("Moved %d item(s) to the trash\n", len(n.IDs))

	case "get":
		files, err := a.targets(ctx, args, "get <id>...")
		if err != nil {
			return err
		}
		n := a.drive.DownloadFiles(ctx, files)
		if err := result(n); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", n.Name)

	case "put":
		dirID := ""
		if interactive {
			v := a.state.FolderView()
			if v == nil {
				return errNoFolder
			}
			dirID = v.Folder.ID
		} else {
			if len(args) < 2 {
				return usageError("put <folder-id> <path>...")
			}
			if err := a.openIfNeeded(ctx, args[0]); err != nil {
				return err
			}
			dirID, args = args[0], args[1:]
		}
		if len(args) == 0 {
			return usageError("put <path>...")
		}
		var files []models.LocalFile
		for _, p := range args {
			f, err := models.LocalFileFromPath(p)
			if err != nil {
				return err
			}
			files = append(files, f)
		}
		n := a.drive.UploadFiles(ctx, files, dirID, a.state.FolderView())
		for _, t := range n.Tasks {
			fmt.Printf("%-10s %s\n", t.Status, t.Name)
		}

	case "offline":
		if len(args) == 0 {
			ids, err := a.drive.AvailableOffline(ctx)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("No file is available offline.")
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}
		files, err := a.targets(ctx, args[:1], "offline [id]")
		if err != nil {
			return err
		}
		n := a.drive.ToggleAvailableOffline(ctx, files[0])
		if err := result(n); err != nil {
			return err
		}
		if n.Type == notify.MakeAvailableOffline {
			fmt.Printf("%s is available offline\n", files[0].Name)
		} else {
			fmt.Printf("%s is no longer available offline\n", files[0].Name)
		}

	case "open":
		files, err := a.targets(ctx, args[:min(len(args), 1)], "open <id>")
		if err != nil {
			return err
		}
		f := files[0]
		if a.state.IsAvailableOffline(f.ID) && a.drive.Platform().SupportsOffline() {
			return result(a.drive.OpenLocalFile(ctx, f))
		}
		return result(a.drive.OpenFileWith(ctx, f))

	case "url":
		if len(args) != 1 {
			return usageError("url <id>")
		}
		u, err := a.drive.FileDownloadURL(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(u)

	case "select", "unselect":
		for _, id := range args {
			if cmd == "select" {
				a.drive.SelectFile(id)
			} else {
				a.drive.UnselectFile(id)
			}
		}
		fmt.Printf("%d selected\n", a.state.State().Selected.Len())

	case "clear":
		a.drive.ClearSelection()

	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

// openIfNeeded opens folderID unless it is already the open folder.
func (a *app) openIfNeeded(ctx context.Context, folderID string) error {
	if a.state.State().OpenedFolderID == folderID {
		return nil
	}
	return result(a.drive.OpenFolder(ctx, folderID))
}

// targets resolves ids to entries, preferring the loaded listing. With no
// ids, the selection is used.
func (a *app) targets(ctx context.Context, ids []string, usage string) ([]models.FileEntry, error) {
	if len(ids) == 0 {
		if sel := a.state.Selection(); len(sel) > 0 {
			return sel, nil
		}
		return nil, usageError(usage)
	}

	loaded := make(map[string]models.FileEntry)
	for _, f := range a.state.State().Files {
		loaded[f.ID] = f
	}

	files := make([]models.FileEntry, 0, len(ids))
	for _, id := range ids {
		if f, ok := loaded[id]; ok {
			files = append(files, f)
			continue
		}
		f, err := a.client.StatByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		files = append(files, *f)
	}
	return files, nil
}

func (a *app) printListing() {
	s := a.state.State()
	switch {
	case s.Recent:
		fmt.Println("Recent files")
	case s.Folder != nil:
		title := s.Folder.Path
		if title == "" {
			title = s.Folder.Name
		}
		fmt.Printf("%s (%s)\n", title, s.Folder.ID)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, " \tID\tNAME\tSIZE\tUPDATED\tOFFLINE")
	for _, f := range s.Files {
		mark := " "
		if s.Selected.Has(f.ID) {
			mark = "*"
		}
		name, size := f.Name, formatSize(f.Size)
		if f.IsDir() {
			name, size = name+"/", "-"
		}
		if s.Recent && f.Path != "" {
			name = strings.TrimSuffix(f.Path, "/") + "/" + name
		}
		offline := ""
		if _, ok := s.AvailableOffline[f.ID]; ok {
			offline = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", mark, f.ID, name, size, formatTime(f.UpdatedAt), offline)
	}
	w.Flush()

	if !s.Recent && s.FileCount > len(s.Files) {
		fmt.Printf("Showing %d of %d, use 'more' for the next page\n", len(s.Files), s.FileCount)
	}
}

func (a *app) printAlerts() {
	for _, al := range a.state.DrainAlerts() {
		if len(al.Data) > 0 {
			fmt.Fprintf(os.Stderr, "[%s] %s %v\n", al.Level, al.Message, al.Data)
		} else {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", al.Level, al.Message)
		}
	}
}

func (a *app) shell(ctx context.Context) bool {
	if a.token != nil {
		a.client.StartTokenRefreshLoop(ctx, a.token, config.TokenFilePath())
	}
	if err := a.exec(ctx, "cd", nil, true); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", a.prompt())
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err() == nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return true
		case "help":
			fmt.Println("cd <id|..>, ls, more, sort <attr> [order], recent, trash, mkdir <name>, " +
				"rm/get [id...], put <path>..., offline [id], open <id>, url <id>, " +
				"select/unselect <id>..., clear, quit")
			continue
		}
		if err := a.exec(ctx, fields[0], fields[1:], true); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		a.printAlerts()
		if ctx.Err() != nil {
			return true
		}
	}
}

func (a *app) prompt() string {
	s := a.state.State()
	switch {
	case s.Recent:
		return "recent"
	case s.Folder == nil:
		return "drive"
	case s.Folder.Path != "":
		return s.Folder.Path
	}
	return s.Folder.Name
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
