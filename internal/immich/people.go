package immich

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GetPersonID looks a person up by name. Exactly one match is required:
// zero matches return ErrNotFound, more than one return ErrAmbiguous.
// The returned ID is empty in both cases; the first match is never guessed.
func (c *Client) GetPersonID(ctx context.Context, name string) (string, error) {
	query := url.Values{"name": []string{name}}
	result, err := doGetJSON[[]Person](ctx, c, "search/person", query)
	if err != nil {
		return "", err
	}

	people := *result
	switch len(people) {
	case 0:
		return "", fmt.Errorf("person %q: %w", name, ErrNotFound)
	case 1:
		return people[0].ID, nil
	default:
		return "", fmt.Errorf("person %q matched %d people: %w", name, len(people), ErrAmbiguous)
	}
}

// GetSimilarFaces returns the visible people closest to the given person.
func (c *Client) GetSimilarFaces(ctx context.Context, personID string) ([]Person, error) {
	query := url.Values{
		"closestPersonId": []string{personID},
		"withHidden":      []string{"false"},
	}
	result, err := doGetJSON[PeopleResponse](ctx, c, "people", query)
	if err != nil {
		return nil, err
	}
	return result.People, nil
}

// MergePerson merges duplicateID into mainID. The duplicate person is removed by the server.
func (c *Client) MergePerson(ctx context.Context, mainID, duplicateID string) error {
	input := MergePersonRequest{IDs: []string{duplicateID}}
	result, err := doPostJSON[[]BulkIDResponse](ctx, c, "people/"+mainID+"/merge", input)
	if err != nil {
		return err
	}
	return bulkError(*result)
}

// UpdatePeople applies the given updates in a single request.
func (c *Client) UpdatePeople(ctx context.Context, updates []PersonUpdate) error {
	input := PeopleUpdateRequest{People: updates}
	result, err := doPutJSON[[]BulkIDResponse](ctx, c, "people", input)
	if err != nil {
		return err
	}
	return bulkError(*result)
}

// HidePerson marks a person as hidden.
func (c *Client) HidePerson(ctx context.Context, personID string) error {
	hidden := true
	return c.UpdatePeople(ctx, []PersonUpdate{{ID: personID, IsHidden: &hidden}})
}

// bulkError turns failed entries of a bulk response into an error.
func bulkError(results []BulkIDResponse) error {
	var failed []string
	for _, r := range results {
		if !r.Success {
			msg := r.ID
			if r.Error != "" {
				msg += " (" + r.Error + ")"
			}
			failed = append(failed, msg)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("bulk operation failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
