package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type registerInput struct {
	FullName  string `json:"fullName" validate:"notblank"`
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
	ChannelID string `form:"channelId" validate:"omitempty,objectid"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		input  registerInput
		failed map[string]string
	}{
		{
			name: "valid",
			input: registerInput{
				FullName: "Alice", Email: "alice@example.com", Username: "alice_01", Password: "secret",
			},
		},
		{
			name:   "blank full name",
			input:  registerInput{FullName: "   ", Email: "a@b.co", Username: "alice", Password: "secret"},
			failed: map[string]string{"fullName": "notblank"},
		},
		{
			name:   "bad email and short password",
			input:  registerInput{FullName: "A", Email: "nope", Username: "alice", Password: "123"},
			failed: map[string]string{"email": "email", "password": "min"},
		},
		{
			name:   "missing username",
			input:  registerInput{FullName: "A", Email: "a@b.co", Password: "secret"},
			failed: map[string]string{"username": "required"},
		},
		{
			name:   "bad object id",
			input:  registerInput{FullName: "A", Email: "a@b.co", Username: "alice", Password: "secret", ChannelID: "xyz"},
			failed: map[string]string{"channelId": "objectid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if len(tt.failed) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs Errors
			require.ErrorAs(t, err, &verrs)
			got := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				got[fe.Field] = fe.Tag
			}
			assert.Equal(t, tt.failed, got)
			assert.Len(t, verrs.Messages(), len(tt.failed))
		})
	}
}

func TestValidator_Sanitize(t *testing.T) {
	v := New()

	tests := []struct {
		in   string
		want string
	}{
		{"  <b>hello</b> world ", "hello world"},
		{"<img src=x onerror=alert(1)>", ""},
		{"<script>alert(1)</script>hi", "hi"},
		{"Tom & Jerry's cartoon", "Tom & Jerry's cartoon"},
		{`He said "hi" <3`, `He said "hi" <3`},
		{"a &amp; b", "a & b"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, v.Sanitize(tt.in), "input %q", tt.in)
	}
}

func TestValidator_IsValidEmail(t *testing.T) {
	v := New()
	assert.True(t, v.IsValidEmail("bob@example.org"))
	assert.False(t, v.IsValidEmail("bob@"))
	assert.False(t, v.IsValidEmail(""))
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()

	got, ok := ParseObjectID(id.Hex())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ParseObjectID("not-an-id")
	assert.False(t, ok)
	_, ok = ParseObjectID("")
	assert.False(t, ok)
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		page, limit string
		want        models.Page
	}{
		{"", "", models.Page{Page: 1, Limit: 10}},
		{"0", "0", models.Page{Page: 1, Limit: 10}},
		{"-3", "5", models.Page{Page: 1, Limit: 5}},
		{"4", "500", models.Page{Page: 4, Limit: 100}},
		{"abc", "xyz", models.Page{Page: 1, Limit: 10}},
		{"9223372036854775807", "100", models.Page{Page: math.MaxInt64 / 100, Limit: 100}},
		{"9223372036854775807", "", models.Page{Page: math.MaxInt64 / 10, Limit: 10}},
	}

	for _, tt := range tests {
		got := ParsePage(tt.page, tt.limit)
		assert.Equal(t, tt.want, got, "page=%q limit=%q", tt.page, tt.limit)
		assert.GreaterOrEqual(t, got.Skip(), int64(0), "page=%q limit=%q", tt.page, tt.limit)
	}
}

func TestParseVideoQuery(t *testing.T) {
	q := ParseVideoQuery("2", "20", " cats ", "views", "asc")
	assert.Equal(t, models.Page{Page: 2, Limit: 20}, q.Page)
	assert.Equal(t, "cats", q.Query)
	assert.Equal(t, "views", q.SortBy)
	assert.False(t, q.SortDesc)

	q = ParseVideoQuery("", "", "", "password", "")
	assert.Equal(t, "createdAt", q.SortBy)
	assert.True(t, q.SortDesc)
}
