package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/powder-labs/powder/internal/model"
)

// TripLog writes one page per recommendation into a Notion database. Pages
// are keyed by trip date: exporting twice for the same date updates the
// existing entry instead of duplicating it.
type TripLog struct {
	client Client
	dbID   string
}

// NewTripLog binds a trip log to a database.
func NewTripLog(c Client, dbID string) *TripLog {
	return &TripLog{client: c, dbID: dbID}
}

// Export upserts the trip entry for date from a ranked result and returns
// the page ID. Sentinel results (no eligible pick, postponed) are logged
// too; a skipped day is part of the season's record.
func (t *TripLog) Export(ctx context.Context, date time.Time, res *model.RankedResult) (string, error) {
	props := tripProperties(date, res)

	existing, err := FindTripEntry(ctx, t.client, t.dbID, date)
	if err != nil {
		return "", err
	}

	if existing != nil {
		page, err := t.client.UpdatePage(ctx, string(existing.ID), &notionapi.PageUpdateRequest{
			Properties: props,
		})
		if err != nil {
			return "", eris.Wrap(err, "notion: update trip entry")
		}
		return string(page.ID), nil
	}

	page, err := t.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(t.dbID),
		},
		Properties: props,
	})
	if err != nil {
		return "", eris.Wrap(err, "notion: create trip entry")
	}
	return string(page.ID), nil
}

// FindTripEntry returns the page whose Date property equals date, or nil
// when no entry exists yet.
func FindTripEntry(ctx context.Context, c Client, dbID string, date time.Time) (*notionapi.Page, error) {
	day := notionapi.Date(date)
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Date",
			Date: &notionapi.DateFilterCondition{
				Equals: &day,
			},
		},
	}

	pages, err := QueryAll(ctx, c, dbID, filter)
	if err != nil {
		return nil, eris.Wrap(err, "notion: find trip entry")
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return &pages[0], nil
}

// tripProperties flattens a ranked result into the trip-log schema.
func tripProperties(date time.Time, res *model.RankedResult) notionapi.Properties {
	props := make(notionapi.Properties)

	title := fmt.Sprintf("%s: no pick", date.Format("2006-01-02"))
	if top := res.Top1(); top != nil {
		title = fmt.Sprintf("%s: %s", date.Format("2006-01-02"), top.Name)
	}
	props["Name"] = notionapi.TitleProperty{
		Type: notionapi.PropertyTypeTitle,
		Title: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: title}},
		},
	}

	day := notionapi.Date(date)
	props["Date"] = notionapi.DateProperty{
		Type: notionapi.PropertyTypeDate,
		Date: &notionapi.DateObject{Start: &day},
	}

	props["Status"] = notionapi.SelectProperty{
		Type:   notionapi.PropertyTypeSelect,
		Select: notionapi.Option{Name: string(res.Status)},
	}

	top := res.Top1()
	if top == nil {
		if res.Reason != "" {
			props["Notes"] = richText(res.Reason)
		}
		return props
	}

	props["Mountain"] = richText(top.Name)
	props["Score"] = notionapi.NumberProperty{
		Type:   notionapi.PropertyTypeNumber,
		Number: top.Score,
	}
	if top.Drive != nil {
		props["Drive Minutes"] = notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: top.Drive.DurationMinutes,
		}
	}
	if top.Conditions != nil {
		props["Conditions"] = richText(fmt.Sprintf(
			"%.0fcm fresh, %.0fcm base, %.0fC, wind %.0f kph, %s",
			top.Conditions.FreshSnow24hCM,
			top.Conditions.SnowDepthCM,
			top.Conditions.TempC,
			top.Conditions.WindKPH,
			top.Conditions.WeatherDescription(),
		))
	}

	var notes []string
	if res.Day != nil && res.Day.Rationale != "" {
		notes = append(notes, res.Day.Rationale)
	}
	if top.TradeoffNote != "" {
		notes = append(notes, top.TradeoffNote)
	}
	if res.Crowd != nil && res.Crowd.Note != "" {
		notes = append(notes, res.Crowd.Note)
	}
	if len(notes) > 0 {
		props["Notes"] = richText(strings.Join(notes, " "))
	}

	return props
}

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}
