package notion

import (
	"strings"
	"time"
)

// Annotations are the style flags of a rich text segment
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color,omitempty"`
}

// Link is the target of a linked text segment
type Link struct {
	URL string `json:"url"`
}

// TextContent is the payload of a text segment
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// RichText is one segment of a rich text sequence
type RichText struct {
	Type        string       `json:"type,omitempty"`
	PlainText   string       `json:"plain_text,omitempty"`
	Href        string       `json:"href,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	Text        *TextContent `json:"text,omitempty"`
}

// PlainText concatenates the plain text of all segments
func PlainText(segments []RichText) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteString(s.PlainText)
	}

	return sb.String()
}

// PartialUser is the user reference embedded in other objects
type PartialUser struct {
	Object string `json:"object"`
	ID     string `json:"id"`
}

// User is a Notion user, either a person or a bot
type User struct {
	Object    string `json:"object"`
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// IsBot reports whether the user is an integration
func (u *User) IsBot() bool {
	return u.Type == "bot"
}

// Parent locates the object a comment or page belongs to
type Parent struct {
	Type       string `json:"type,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	BlockID    string `json:"block_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

// Comment is a Notion comment
type Comment struct {
	Object         string      `json:"object"`
	ID             string      `json:"id"`
	Parent         Parent      `json:"parent"`
	DiscussionID   string      `json:"discussion_id"`
	CreatedTime    time.Time   `json:"created_time"`
	LastEditedTime time.Time   `json:"last_edited_time"`
	CreatedBy      PartialUser `json:"created_by"`
	RichText       []RichText  `json:"rich_text"`
}

// Property is a page property value.
// Only the text-like property types are decoded.
type Property struct {
	ID       string     `json:"id,omitempty"`
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
}

// Text returns the plain text of a title or rich_text property
func (p Property) Text() string {
	switch p.Type {
	case "title":
		return PlainText(p.Title)
	case "rich_text":
		return PlainText(p.RichText)
	default:
		return ""
	}
}

// Page is a Notion page
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Archived       bool                `json:"archived"`
	URL            string              `json:"url"`
	Parent         Parent              `json:"parent"`
	Properties     map[string]Property `json:"properties"`
}

// Title returns the text of the page's title property
func (p *Page) Title() string {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return prop.Text()
		}
	}

	return ""
}

// TextBlock is the payload shared by paragraphs, headings, list items and quotes
type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// ToDoBlock is a checkbox item
type ToDoBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// CodeBlock is a fenced code block
type CodeBlock struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language"`
}

// FileRef points at an uploaded or external file
type FileRef struct {
	URL string `json:"url"`
}

// FileBlock is an image or other embedded file
type FileBlock struct {
	Type     string     `json:"type"`
	File     *FileRef   `json:"file,omitempty"`
	External *FileRef   `json:"external,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// Src returns the url of the file whichever way it is hosted
func (f *FileBlock) Src() string {
	switch {
	case f.File != nil:
		return f.File.URL
	case f.External != nil:
		return f.External.URL
	default:
		return ""
	}
}

// BookmarkBlock is a link preview
type BookmarkBlock struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

// Block is one node of a page's content tree.
//
// Exactly one payload matching Type is set. Children is filled by callers
// that walk the tree, the API itself only reports HasChildren.
type Block struct {
	Object      string         `json:"object"`
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	HasChildren bool           `json:"has_children"`
	Paragraph   *TextBlock     `json:"paragraph,omitempty"`
	Heading1    *TextBlock     `json:"heading_1,omitempty"`
	Heading2    *TextBlock     `json:"heading_2,omitempty"`
	Heading3    *TextBlock     `json:"heading_3,omitempty"`
	Bulleted    *TextBlock     `json:"bulleted_list_item,omitempty"`
	Numbered    *TextBlock     `json:"numbered_list_item,omitempty"`
	Quote       *TextBlock     `json:"quote,omitempty"`
	Callout     *TextBlock     `json:"callout,omitempty"`
	Toggle      *TextBlock     `json:"toggle,omitempty"`
	ToDo        *ToDoBlock     `json:"to_do,omitempty"`
	Code        *CodeBlock     `json:"code,omitempty"`
	Image       *FileBlock     `json:"image,omitempty"`
	Bookmark    *BookmarkBlock `json:"bookmark,omitempty"`
	Children    []Block        `json:"children,omitempty"`
}

// RichText returns the text payload of the block, if it has one
func (b *Block) RichText() []RichText {
	for _, tb := range []*TextBlock{
		b.Paragraph, b.Heading1, b.Heading2, b.Heading3,
		b.Bulleted, b.Numbered, b.Quote, b.Callout, b.Toggle,
	} {
		if tb != nil {
			return tb.RichText
		}
	}

	switch {
	case b.ToDo != nil:
		return b.ToDo.RichText
	case b.Code != nil:
		return b.Code.RichText
	default:
		return nil
	}
}

// listResponse is the envelope of every paginated endpoint
type listResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}
