package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/bt/pkg/models"
)

// completeTaskIDs returns a completion function listing task ids, limited to
// the given statuses when any are named.
func completeTaskIDs(statuses ...models.Status) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if Tasks == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		entries, err := Tasks.ListAll()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		include := make(map[models.Status]bool, len(statuses))
		for _, s := range statuses {
			include[s] = true
		}

		var ids []string
		for _, e := range entries {
			if len(include) > 0 && !include[e.Status] {
				continue
			}
			if toComplete == "" || strings.HasPrefix(string(e.Task.ID), toComplete) {
				ids = append(ids, string(e.Task.ID)+"\t"+e.Task.Title)
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

func completePriorities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"critical\tDrop everything",
		"high\tNext up",
		"medium\tDefault",
		"low\tWhen there is time",
	}, cobra.ShellCompDirectiveNoFileComp
}

func completeStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"open\tReady to be picked up",
		"in-progress\tActively being worked on",
		"blocked\tWaiting on another task",
		"closed\tDone",
		"cancelled\tWill not be done",
	}, cobra.ShellCompDirectiveNoFileComp
}
