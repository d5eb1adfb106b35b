package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/philippgille/chromem-go"

	"aromasens/logger"
	"aromasens/models"
	"aromasens/storage"
)

// CatalogIndex ranks a gender's perfumes by how well their text matches
// the visitor's answers. One chromem collection is kept per gender.
type CatalogIndex struct {
	log         *logger.Logger
	db          *chromem.DB
	embed       chromem.EmbeddingFunc
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// NewCatalogIndex creates an empty in-memory index. A nil embed uses LocalEmbeddingFunc.
func NewCatalogIndex(log *logger.Logger, embed chromem.EmbeddingFunc) *CatalogIndex {
	if embed == nil {
		embed = LocalEmbeddingFunc()
	}
	return &CatalogIndex{
		log:         log.With("service", "CatalogIndex"),
		db:          chromem.NewDB(),
		embed:       embed,
		collections: make(map[string]*chromem.Collection),
	}
}

// OpenAIEmbeddingFunc embeds through the OpenAI embeddings API
func OpenAIEmbeddingFunc(apiKey string) chromem.EmbeddingFunc {
	return chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small)
}

func collectionName(gender string) string {
	return "perfumes-" + gender
}

// Build indexes every perfume of both genders held by store
func (c *CatalogIndex) Build(ctx context.Context, store storage.Store) (int, error) {
	total := 0
	for _, gender := range []string{models.GenderFeminine, models.GenderMasculine} {
		perfumes, err := store.ListPerfumesByGender(ctx, gender)
		if err != nil {
			return total, fmt.Errorf("failed to list %s catalog: %w", gender, err)
		}
		if err := c.Index(ctx, gender, perfumes); err != nil {
			return total, err
		}
		total += len(perfumes)
	}
	c.log.Info("catalog index built", "documents", total)
	return total, nil
}

// Index adds perfumes to the gender's collection
func (c *CatalogIndex) Index(ctx context.Context, gender string, perfumes []models.Perfume) error {
	coll, err := c.db.GetOrCreateCollection(collectionName(gender), map[string]string{"gender": gender}, c.embed)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	for _, p := range perfumes {
		err := coll.AddDocument(ctx, chromem.Document{
			ID:      strconv.FormatInt(p.ID, 10),
			Content: perfumeDocument(p),
			Metadata: map[string]string{
				"gender": p.Gender,
				"brand":  p.Brand,
				"name":   p.Name,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to index perfume %d: %w", p.ID, err)
		}
	}

	c.mu.Lock()
	c.collections[gender] = coll
	c.mu.Unlock()
	return nil
}

// Rank orders perfumes by similarity to prefs, most similar first.
// The result always holds exactly the given perfumes; ids the index does
// not know keep their relative order at the end.
func (c *CatalogIndex) Rank(ctx context.Context, gender string, prefs models.ChatPreferences, perfumes []models.Perfume) ([]models.Perfume, error) {
	c.mu.RLock()
	coll, ok := c.collections[gender]
	c.mu.RUnlock()

	query := strings.TrimSpace(strings.Join([]string{prefs.Preferences, prefs.Occasion, prefs.Experience}, " "))
	if !ok || coll.Count() == 0 || query == "" || len(perfumes) == 0 {
		return perfumes, nil
	}

	results, err := coll.Query(ctx, query, coll.Count(), nil, nil)
	if err != nil {
		return perfumes, fmt.Errorf("failed to query catalog index: %w", err)
	}

	byID := make(map[string]models.Perfume, len(perfumes))
	for _, p := range perfumes {
		byID[strconv.FormatInt(p.ID, 10)] = p
	}
	ranked := make([]models.Perfume, 0, len(perfumes))
	seen := make(map[int64]bool, len(perfumes))
	for _, r := range results {
		p, ok := byID[r.ID]
		if !ok || seen[p.ID] {
			continue
		}
		ranked = append(ranked, p)
		seen[p.ID] = true
	}
	for _, p := range perfumes {
		if !seen[p.ID] {
			ranked = append(ranked, p)
		}
	}
	return ranked, nil
}

func perfumeDocument(p models.Perfume) string {
	parts := []string{p.Name, p.Brand, p.Description}
	parts = append(parts, p.Notes...)
	parts = append(parts, p.Occasions...)
	parts = append(parts, p.ProfileTags...)
	return strings.Join(parts, ". ")
}

const localEmbeddingDims = 256

var stopwords = map[string]bool{
	"de": true, "la": true, "el": true, "los": true, "las": true, "y": true, "con": true,
	"para": true, "en": true, "un": true, "una": true, "por": true, "que": true, "su": true,
	"the": true, "and": true, "of": true, "for": true, "with": true, "to": true, "a": true,
}

// LocalEmbeddingFunc hashes words into a fixed size bag-of-words vector.
// Accents are folded and a four letter stem is hashed alongside each word,
// so "florales" and "floral" land in the same bucket. No network access.
func LocalEmbeddingFunc() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, localEmbeddingDims)
		vec[0] = 0.1
		for _, tok := range tokenize(text) {
			vec[bucket(tok)] += 1
			if r := []rune(tok); len(r) > 4 {
				vec[bucket(string(r[:4]))] += 0.5
			}
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
		return vec, nil
	}
}

func bucket(tok string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tok))
	// slot 0 is the bias dimension
	return 1 + int(h.Sum32()%(localEmbeddingDims-1))
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(foldAccents(strings.ToLower(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

var accentFolder = strings.NewReplacer(
	"á", "a", "à", "a", "ä", "a", "â", "a",
	"é", "e", "è", "e", "ë", "e", "ê", "e",
	"í", "i", "ì", "i", "ï", "i", "î", "i",
	"ó", "o", "ò", "o", "ö", "o", "ô", "o",
	"ú", "u", "ù", "u", "ü", "u", "û", "u",
	"ñ", "n", "ç", "c",
)

func foldAccents(s string) string {
	return accentFolder.Replace(s)
}
