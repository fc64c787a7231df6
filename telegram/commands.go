package telegram

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// CustomCommand is a user-defined slash command loaded from a JSON file.
// The file name (without extension) is the command name.
type CustomCommand struct {
	Name        string
	Description string
	Prompt      string
	Source      string // "global" or "project"
}

// ScanCommands lists custom commands from the global directory
// (~/.claude/commands) and the working directory's .claude/commands,
// project commands overriding global ones of the same name.
func ScanCommands(workDir string) []CustomCommand {
	commands := make(map[string]CustomCommand)

	if home, err := os.UserHomeDir(); err == nil {
		for _, cmd := range scanCommandDir(filepath.Join(home, ".claude", "commands"), "global") {
			commands[cmd.Name] = cmd
		}
	}
	for _, cmd := range scanCommandDir(filepath.Join(workDir, ".claude", "commands"), "project") {
		commands[cmd.Name] = cmd
	}

	out := make([]CustomCommand, 0, len(commands))
	for _, cmd := range commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CommandByName resolves one custom command, project before global.
func CommandByName(name, workDir string) (CustomCommand, bool) {
	projectFile := filepath.Join(workDir, ".claude", "commands", name+".json")
	if cmd, ok := loadCommand(projectFile, "project"); ok {
		return cmd, true
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return CustomCommand{}, false
	}
	return loadCommand(filepath.Join(home, ".claude", "commands", name+".json"), "global")
}

// scanCommandDir loads every valid command file in one directory. Malformed
// files are skipped.
func scanCommandDir(dir, source string) []CustomCommand {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil
	}

	var commands []CustomCommand
	for _, path := range matches {
		if cmd, ok := loadCommand(path, source); ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

// loadCommand reads one command file. Files missing required fields or with
// invalid JSON are rejected.
func loadCommand(path, source string) (CustomCommand, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CustomCommand{}, false
	}

	var payload struct {
		Description string `json:"description"`
		Prompt      string `json:"prompt"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return CustomCommand{}, false
	}
	if payload.Description == "" || payload.Prompt == "" {
		return CustomCommand{}, false
	}

	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]

	return CustomCommand{
		Name:        name,
		Description: payload.Description,
		Prompt:      payload.Prompt,
		Source:      source,
	}, true
}
