// ABOUTME: CLI commands for managing posts directly.
// ABOUTME: Provides post, delpost, editpost, and list subcommands over the store.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2389-research/postboard/internal/models"
	"github.com/2389-research/postboard/internal/storage"
)

var postCmd = &cobra.Command{
	Use:   "post <title> <content>",
	Short: "Add a post",
	Long:  "Append a post with optional image and video URLs.",
	Args:  cobra.ExactArgs(2),
	RunE:  runPost,
}

var delpostCmd = &cobra.Command{
	Use:   "delpost <title>",
	Short: "Delete posts by title",
	Long:  "Delete every post whose title matches, ignoring case.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelpost,
}

var editpostCmd = &cobra.Command{
	Use:   "editpost <title>",
	Short: "Edit a post by title",
	Long:  "Edit the first post whose title matches, ignoring case. Only the flags given are changed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditpost,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	Long:  "Print every post in stored order.",
	RunE:  runList,
}

// Flags
var (
	postImage   string
	postVideo   string
	editContent string
	editImage   string
	editVideo   string
	listJSON    bool
)

var errNoEdit = errors.New("nothing to change: pass --content, --image or --video")

func init() {
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(delpostCmd)
	rootCmd.AddCommand(editpostCmd)
	rootCmd.AddCommand(listCmd)

	postCmd.Flags().StringVar(&postImage, "image", "", "Image URL")
	postCmd.Flags().StringVar(&postVideo, "video", "", "Video URL")

	editpostCmd.Flags().StringVar(&editContent, "content", "", "New content")
	editpostCmd.Flags().StringVar(&editImage, "image", "", "New image URL")
	editpostCmd.Flags().StringVar(&editVideo, "video", "", "New video URL")

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print posts as a JSON array")
}

func runPost(cmd *cobra.Command, args []string) error {
	added, err := globalStore.Add(args[0], args[1], postImage, postVideo)
	if err != nil {
		return fmt.Errorf("failed to add post: %w", err)
	}
	if !added {
		return fmt.Errorf("unable to add post: title and content are required")
	}
	fmt.Printf("Post added: %s\n", args[0])
	return nil
}

func runDelpost(cmd *cobra.Command, args []string) error {
	deleted, err := globalStore.DeleteByTitle(args[0])
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if !deleted {
		return fmt.Errorf("no post titled '%s' found", args[0])
	}
	fmt.Printf("Post titled '%s' has been deleted.\n", args[0])
	return nil
}

func runEditpost(cmd *cobra.Command, args []string) error {
	edit := models.PostEdit{Content: editContent, ImageURL: editImage, VideoURL: editVideo}
	if edit.IsEmpty() {
		return errNoEdit
	}

	edited, err := globalStore.EditByTitle(args[0], edit)
	if err != nil {
		return fmt.Errorf("failed to edit post: %w", err)
	}
	if !edited {
		return fmt.Errorf("no post titled '%s' found", args[0])
	}
	fmt.Printf("Post edited: %s\n", args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	posts, status := globalStore.Load()
	if status == storage.LoadRecovered {
		fmt.Fprintln(os.Stderr, "warning: the post file could not be read cleanly; showing what was recovered")
	}

	if listJSON {
		if posts == nil {
			posts = []models.Post{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		return enc.Encode(posts)
	}

	if len(posts) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	for _, post := range posts {
		fmt.Printf("--- %s\n%s\n", post.Title, post.Content)
		if post.HasImage() {
			fmt.Printf("image: %s\n", post.ImageURL)
		}
		if post.HasVideo() {
			fmt.Printf("video: %s\n", post.VideoURL)
		}
		fmt.Println()
	}
	return nil
}
