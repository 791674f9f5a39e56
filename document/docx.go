/*
Package document fills a .docx contract template with a contract.Context.

PURPOSE:
  The template is an ordinary Word document whose text contains
  placeholders written as {{ key }}. Render copies the archive and
  replaces every placeholder in the document body, headers and footers
  with the XML-escaped context value. Unknown keys render as empty text.

SPLIT RUNS:
  Word often splits typed text across several <w:r> runs, so a placeholder
  may arrive as "{{ pay</w:t></w:r><w:r><w:t>ment_date_1 }}". Tags found
  inside a placeholder are dropped before the key is read. The dropped
  tags are a closing run followed by an opening run, so the XML stays
  balanced.

PARAGRAPHS:
  A placeholder never spans two <w:p> paragraphs. Within a paragraph the
  key must look like an identifier. A stray "{{" with no closing braces,
  or braces around ordinary text, stay in the document as typed, and a
  paragraph without a placeholder is copied byte for byte.

SEE ALSO:
  - contract/service.go: Binder interface
  - api/handlers.go:     Streams the rendered bytes to the client
*/
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/schedule"
)

// MIMEType is the content type of a filled contract.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const bodyPart = "word/document.xml"

var (
	splitOpen   = regexp.MustCompile(`\{(?:<[^>]*>)+\{`)
	splitClose  = regexp.MustCompile(`\}(?:<[^>]*>)+\}`)
	placeholder = regexp.MustCompile(`\{\{([^{}]*)\}\}`)
	paragraph   = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	xmlTag      = regexp.MustCompile(`<[^>]*>`)
	validKey    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Docx binds contexts into the template stored at TemplatePath.
type Docx struct {
	TemplatePath string
}

func NewDocx(templatePath string) *Docx {
	return &Docx{TemplatePath: templatePath}
}

// Check verifies the template exists and is a Word archive with a body.
func (d *Docx) Check() error {
	zr, err := zip.OpenReader(d.TemplatePath)
	if err != nil {
		return &schedule.TemplateError{Path: d.TemplatePath, Err: err}
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == bodyPart {
			return nil
		}
	}
	return &schedule.TemplateError{Path: d.TemplatePath, Err: fmt.Errorf("archive has no %s", bodyPart)}
}

// Render writes the filled document to w.
func (d *Docx) Render(w io.Writer, ctx contract.Context) error {
	zr, err := zip.OpenReader(d.TemplatePath)
	if err != nil {
		return &schedule.TemplateError{Path: d.TemplatePath, Err: err}
	}
	defer zr.Close()

	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		data, err := readPart(f)
		if err != nil {
			return err
		}
		out, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := out.Write(Substitute(data, ctx)); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

// Placeholders lists the distinct keys used by the template, sorted.
func (d *Docx) Placeholders() ([]string, error) {
	zr, err := zip.OpenReader(d.TemplatePath)
	if err != nil {
		return nil, &schedule.TemplateError{Path: d.TemplatePath, Err: err}
	}
	defer zr.Close()

	seen := map[string]bool{}
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			continue
		}
		data, err := readPart(f)
		if err != nil {
			return nil, err
		}
		for _, p := range paragraph.FindAll(data, -1) {
			for _, m := range placeholder.FindAllSubmatch(joinSplitBraces(p), -1) {
				if key, ok := placeholderKey(m[1]); ok {
					seen[key] = true
				}
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// MissingKeys returns the context keys the template has no placeholder for.
func (d *Docx) MissingKeys(ctx contract.Context) ([]string, error) {
	have, err := d.Placeholders()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(have))
	for _, k := range have {
		set[k] = true
	}
	var missing []string
	for _, k := range ctx.Keys() {
		if !set[k] {
			missing = append(missing, k)
		}
	}
	return missing, nil
}

// Substitute replaces every {{ key }} in the paragraphs of an XML part
// with its escaped value. Text outside <w:p> elements is left alone.
func Substitute(data []byte, ctx contract.Context) []byte {
	return paragraph.ReplaceAllFunc(data, func(p []byte) []byte {
		return substituteParagraph(p, ctx)
	})
}

func substituteParagraph(p []byte, ctx contract.Context) []byte {
	replaced := false
	out := placeholder.ReplaceAllFunc(joinSplitBraces(p), func(m []byte) []byte {
		key, ok := placeholderKey(m[2 : len(m)-2])
		if !ok {
			return m
		}
		replaced = true
		var buf bytes.Buffer
		xml.EscapeText(&buf, []byte(ctx[key]))
		return buf.Bytes()
	})
	if !replaced {
		return p
	}
	return out
}

func joinSplitBraces(data []byte) []byte {
	data = splitOpen.ReplaceAll(data, []byte("{{"))
	return splitClose.ReplaceAll(data, []byte("}}"))
}

// placeholderKey reads the key between the braces. ok is false when the
// text is not an identifier, e.g. "{{ see above }}".
func placeholderKey(inner []byte) (key string, ok bool) {
	key = strings.TrimSpace(string(xmlTag.ReplaceAll(inner, nil)))
	return key, validKey.MatchString(key)
}

func isTextPart(name string) bool {
	if name == bodyPart {
		return true
	}
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

var _ contract.Binder = (*Docx)(nil)
