package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/sajjad939/safechild-lite/internal/cli/types"
)

var (
	// Tree node styles
	sessionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)  // Cyan
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true) // Pink
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // Gray
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))            // Yellow

	// Summary line style
	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)
)

// RenderSessions renders tracked sessions as a tree
func RenderSessions(sessions []types.Session) string {
	if len(sessions) == 0 {
		return keyStyle.Render("No sessions found")
	}

	var parts []string
	for _, s := range sessions {
		parts = append(parts, buildSessionNode(&s).String())
	}

	output := strings.Join(parts, "\n")
	output += "\n" + summaryStyle.Render(fmt.Sprintf("%d session(s)", len(sessions)))
	return output
}

// RenderSessionDetail renders one session as a tree
func RenderSessionDetail(s *types.Session) string {
	return buildSessionNode(s).String()
}

func buildSessionNode(s *types.Session) *tree.Tree {
	label := fmt.Sprintf("%s %s", sessionStyle.Render(s.SessionID), LevelBadge(s.Level))
	node := tree.Root(label)

	node.Child(kv("age band", s.AgeBand))
	node.Child(kv("messages", fmt.Sprintf("%d", s.MessageCount)))
	if len(s.Categories) > 0 {
		node.Child(kv("categories", formatCategories(s.Categories)))
	}
	node.Child(kv("updated", s.UpdatedAt))

	return node
}

// RenderAlerts renders recent alerts as a tree
func RenderAlerts(alerts []types.Alert) string {
	if len(alerts) == 0 {
		return keyStyle.Render("No alerts found")
	}

	var parts []string
	for _, a := range alerts {
		parts = append(parts, buildAlertNode(&a).String())
	}

	output := strings.Join(parts, "\n")
	output += "\n" + summaryStyle.Render(fmt.Sprintf("%d alert(s)", len(alerts)))
	return output
}

// RenderAlertDetail renders one alert as a tree
func RenderAlertDetail(a *types.Alert) string {
	return buildAlertNode(a).String()
}

func buildAlertNode(a *types.Alert) *tree.Tree {
	label := fmt.Sprintf("%s [%s]", alertStyle.Render(a.AlertID), strings.ToUpper(a.Severity))
	node := tree.Root(label)

	node.Child(kv("status", a.Status))
	node.Child(kv("description", a.Description))
	if a.ChildName != "" {
		node.Child(kv("child", a.ChildName))
	}
	if a.Location != "" {
		node.Child(kv("location", a.Location))
	}
	if a.SessionID != "" {
		node.Child(kv("session", a.SessionID))
	}
	node.Child(kv("sms sent", fmt.Sprintf("%t", a.SMSSent)))
	if len(a.NextSteps) > 0 {
		steps := tree.Root(keyStyle.Render("next steps"))
		for _, step := range a.NextSteps {
			steps.Child(valueStyle.Render(step))
		}
		node.Child(steps)
	}
	node.Child(kv("created", a.CreatedAt))

	return node
}

func kv(key, value string) string {
	return fmt.Sprintf("%s: %s", keyStyle.Render(key), valueStyle.Render(value))
}

func formatCategories(categories map[string]int) string {
	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s(%d)", k, categories[k]))
	}
	return strings.Join(parts, ", ")
}
