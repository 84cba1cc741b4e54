// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acatrinei/bookscout/internal/books"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive terminal menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu()
	},
}

// menu drives the interactive session for one signed-in user.
type menu struct {
	service *books.Service
	in      *bufio.Scanner
	userID  string
}

func runMenu() error {
	service, _ := newService()
	m := &menu{
		service: service,
		in:      bufio.NewScanner(os.Stdin),
	}
	return m.run(context.Background())
}

// readLine prints a prompt and returns the trimmed input line.
// Returns false when stdin is closed.
func (m *menu) readLine(prompt string) (string, bool) {
	fmt.Print(promptStyle.Render(prompt) + " ")
	if !m.in.Scan() {
		fmt.Println()
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *menu) run(ctx context.Context) error {
	fmt.Println(titleStyle.Render("Bookscout · book recommendations"))

	userID, ok := m.readLine("Your user id:")
	if !ok || userID == "" {
		fmt.Println(mutedStyle.Render("A user id is required. Bye."))
		return nil
	}
	m.userID = userID

	// User creation is best-effort: a failure here is reported but the
	// session goes on, the same way every later action failure does.
	if err := m.service.EnsureUser(ctx, userID); err != nil {
		fmt.Println(warnStyle.Render("Could not create your user: " + err.Error()))
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("\nWelcome, %s!", userID)))

	hasProfile, err := m.service.HasProfile(ctx, userID)
	switch {
	case err != nil:
		fmt.Println(warnStyle.Render("Could not check your profile, skipping setup: " + err.Error() + "\n"))
	case hasProfile:
		fmt.Println(mutedStyle.Render("You already have a saved taste profile, skipping setup.\n"))
	default:
		m.coldStart(ctx)
	}

	for {
		fmt.Println(titleStyle.Render("Main menu") +
			mutedStyle.Render(" (user: "+m.userID+")"))
		fmt.Println(menuStyle.Render("1) Search for a book by title"))
		fmt.Println(menuStyle.Render("2) Rate a book"))
		fmt.Println(menuStyle.Render("3) Recommendations for me"))
		fmt.Println(menuStyle.Render("4) Books similar to one I pick"))
		fmt.Println(menuStyle.Render("0) Quit"))

		choice, ok := m.readLine("Pick an option:")
		if !ok {
			return nil
		}
		fmt.Println()

		switch choice {
		case "1":
			m.actionSearch(ctx)
		case "2":
			m.actionRate(ctx)
		case "3":
			m.actionRecommend(ctx)
		case "4":
			m.actionSimilar(ctx)
		case "0":
			fmt.Println(mutedStyle.Render("Bye."))
			return nil
		default:
			fmt.Println(warnStyle.Render("Unknown option, try again.\n"))
		}
	}
}

// coldStart asks a new user for up to three liked books and derives the
// initial taste profile from their authors and genres.
func (m *menu) coldStart(ctx context.Context) {
	fmt.Println(menuStyle.Render("\nLet's set up your taste profile."))
	fmt.Println(mutedStyle.Render("Name up to 3 books you liked; ENTER to skip.\n"))

	var picked []string
	for i := 1; i <= 3; i++ {
		itemID := m.searchAndChoose(ctx, fmt.Sprintf("Book #%d, search by title", i))
		if itemID == "" {
			break
		}
		picked = append(picked, itemID)
	}

	if len(picked) == 0 {
		fmt.Println(mutedStyle.Render("No books picked, skipping the initial profile.\n"))
		return
	}

	written, err := m.service.BuildProfile(ctx, m.userID, picked)
	if err != nil {
		fmt.Println(warnStyle.Render("Could not save your starting preferences: " + err.Error() + "\n"))
		return
	}
	if written {
		fmt.Println(successStyle.Render("Initial profile saved (favorite genres and authors).\n"))
	} else {
		fmt.Println(mutedStyle.Render("Could not derive a profile from those picks.\n"))
	}
}

// searchAndChoose runs a search prompt loop: the user types part of a
// title, sees the top five matches, and picks one by number. Picking a
// book records a detail view. Returns "" when the user backs out.
func (m *menu) searchAndChoose(ctx context.Context, prompt string) string {
	for {
		query, ok := m.readLine(prompt + " (ENTER to cancel):")
		if !ok || query == "" {
			return ""
		}

		results, err := m.service.Search(ctx, m.userID, query, 5)
		if err != nil {
			fmt.Println(errorStyle.Render("Search failed: " + err.Error()))
			return ""
		}
		if len(results) == 0 {
			fmt.Println(mutedStyle.Render("No books matched, try another title.\n"))
			continue
		}

		fmt.Println()
		printBookList(results)
		fmt.Println(indexStyle.Render("0)") + " " + mutedStyle.Render("Back"))

		choice, ok := m.readLine("Pick a number:")
		if !ok || choice == "0" {
			return ""
		}
		idx, err := strconv.Atoi(choice)
		if err != nil || idx < 1 || idx > len(results) {
			fmt.Println(warnStyle.Render("Please pick a valid number.\n"))
			continue
		}

		itemID := results[idx-1].ItemID
		if err := m.service.RecordDetailView(ctx, m.userID, itemID); err != nil {
			fmt.Println(warnStyle.Render("Could not record the view: " + err.Error()))
		}
		return itemID
	}
}

func printBookList(results []books.Book) {
	for i, b := range results {
		fmt.Println(indexStyle.Render(fmt.Sprintf("%d)", i+1)) + " " +
			bookStyle.Render(b.Label()))
	}
}

func (m *menu) actionSearch(ctx context.Context) {
	itemID := m.searchAndChoose(ctx, "Title to search for")
	if itemID == "" {
		return
	}
	fmt.Println(successStyle.Render("\nSelected item: "+itemID) + "\n")
}

func (m *menu) actionRate(ctx context.Context) {
	itemID := m.searchAndChoose(ctx, "Title of the book to rate")
	if itemID == "" {
		return
	}

	for {
		raw, ok := m.readLine("Rating (1-5):")
		if !ok {
			return
		}
		stars, err := strconv.ParseFloat(raw, 64)
		if err != nil || stars < 1 || stars > 5 {
			fmt.Println(warnStyle.Render("The rating must be a number between 1 and 5."))
			continue
		}

		if err := m.service.RateBook(ctx, m.userID, itemID, stars); err != nil {
			fmt.Println(errorStyle.Render("Could not save the rating: " + err.Error() + "\n"))
			return
		}
		fmt.Println(successStyle.Render(
			fmt.Sprintf("\nRating saved: %s gave %.1f to %s\n", m.userID, stars, itemID)))
		return
	}
}

func (m *menu) actionRecommend(ctx context.Context) {
	results, err := m.service.RecommendForUser(ctx, m.userID, 10)
	if err != nil {
		fmt.Println(errorStyle.Render("Could not fetch recommendations: " + err.Error() + "\n"))
		return
	}

	fmt.Println(titleStyle.Render("Recommended for " + m.userID))
	if len(results) == 0 {
		fmt.Println(mutedStyle.Render("Not enough signal yet. Rate a few books first.\n"))
		return
	}
	printBookList(results)
	fmt.Println()
}

func (m *menu) actionSimilar(ctx context.Context) {
	itemID := m.searchAndChoose(ctx, "A book to find similar ones for")
	if itemID == "" {
		return
	}

	results, err := m.service.SimilarBooks(ctx, m.userID, itemID, 10)
	if err != nil {
		fmt.Println(errorStyle.Render("Could not fetch similar books: " + err.Error() + "\n"))
		return
	}

	fmt.Println(titleStyle.Render("Books similar to your pick"))
	if len(results) == 0 {
		fmt.Println(mutedStyle.Render("No similar books found.\n"))
		return
	}
	printBookList(results)
	fmt.Println()
}
