package tests

import (
	"testing"

	"github.com/nekomata/nekomata/models"
	"github.com/nekomata/nekomata/repository"
	testingutil "github.com/nekomata/nekomata/testing"
	"github.com/nekomata/nekomata/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewCatRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("Save", func(t *testing.T) {
			cat, err := fixtures.CreateTestCat()
			require.NoError(t, err)
			assert.NotZero(t, cat.ID)
		})

		t.Run("ByID", func(t *testing.T) {
			original, err := fixtures.CreateTestCat()
			require.NoError(t, err)

			cat, err := repo.ByID(ctx, original.ID)
			require.NoError(t, err)
			assert.NotNil(t, cat)
			assert.Equal(t, original.ExternalID, cat.ExternalID)
			assert.Equal(t, original.Image, cat.Image)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			cat, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, cat)
		})

		t.Run("ByExternalID", func(t *testing.T) {
			original, err := fixtures.CreateTestCatWithExternalID("ext-lookup")
			require.NoError(t, err)

			cat, err := repo.ByExternalID(ctx, "ext-lookup")
			require.NoError(t, err)
			assert.NotNil(t, cat)
			assert.Equal(t, original.ID, cat.ID)
		})

		t.Run("ExistsByExternalID", func(t *testing.T) {
			_, err := fixtures.CreateTestCatWithExternalID("ext-exists")
			require.NoError(t, err)

			exists, err := repo.ExistsByExternalID(ctx, "ext-exists")
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = repo.ExistsByExternalID(ctx, "ext-missing")
			require.NoError(t, err)
			assert.False(t, exists)
		})

		t.Run("SaveIgnoreConflict", func(t *testing.T) {
			first := &models.Cat{
				ExternalID: "ext-conflict",
				Width:      100,
				Height:     100,
				Image:      []byte{0x01},
			}
			created, err := repo.SaveIgnoreConflict(ctx, first)
			require.NoError(t, err)
			assert.True(t, created)
			assert.NotZero(t, first.ID)

			// Same external_id again: the insert is silently dropped
			second := &models.Cat{
				ExternalID: "ext-conflict",
				Width:      200,
				Height:     200,
				Image:      []byte{0x02},
			}
			created, err = repo.SaveIgnoreConflict(ctx, second)
			require.NoError(t, err)
			assert.False(t, created)

			count, err := repo.Count(ctx, models.CatFilter{ExternalID: utils.ToPtr("ext-conflict")})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("ByIDWithTags", func(t *testing.T) {
			cat, err := fixtures.CreateTaggedCat("Playful", "Curious")
			require.NoError(t, err)

			loaded, err := repo.ByIDWithTags(ctx, cat.ID)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			require.Len(t, loaded.CatTags, 2)
			names := []string{loaded.CatTags[0].Tag.Name, loaded.CatTags[1].Tag.Name}
			assert.ElementsMatch(t, []string{"Playful", "Curious"}, names)
		})

		t.Run("ListPage", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			cats, err := fixtures.CreateMultipleTestCats(5)
			require.NoError(t, err)

			page1, err := repo.ListPage(ctx, 1, 2, nil)
			require.NoError(t, err)
			require.Len(t, page1, 2)
			assert.Equal(t, cats[0].ID, page1[0].ID)
			assert.Equal(t, cats[1].ID, page1[1].ID)

			page2, err := repo.ListPage(ctx, 2, 2, nil)
			require.NoError(t, err)
			require.Len(t, page2, 2)
			assert.Equal(t, cats[2].ID, page2[0].ID)

			page3, err := repo.ListPage(ctx, 3, 2, nil)
			require.NoError(t, err)
			assert.Len(t, page3, 1)

			// Past the end: empty result, not an error
			page4, err := repo.ListPage(ctx, 4, 2, nil)
			require.NoError(t, err)
			assert.Empty(t, page4)
		})

		t.Run("ListPageTagFilterFold", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			playful, err := fixtures.CreateTaggedCat("Playful")
			require.NoError(t, err)
			_, err = fixtures.CreateTaggedCat("Calm")
			require.NoError(t, err)

			// Filter matches regardless of the stored casing
			got, err := repo.ListPage(ctx, 1, 10, utils.ToPtr("playful"))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, playful.ID, got[0].ID)

			got, err = repo.ListPage(ctx, 1, 10, utils.ToPtr("PLAYFUL"))
			require.NoError(t, err)
			assert.Len(t, got, 1)

			got, err = repo.ListPage(ctx, 1, 10, utils.ToPtr("missing"))
			require.NoError(t, err)
			assert.Empty(t, got)
		})

		t.Run("ListPageNoDuplicatesForMultiTagCat", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.CreateTaggedCat("Active", "Energetic")
			require.NoError(t, err)

			// A cat with several tags still appears once in an unfiltered page
			got, err := repo.ListPage(ctx, 1, 10, nil)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	})
}

func TestTagRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewTagRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("FindOrCreate", func(t *testing.T) {
			tag, created, err := repo.FindOrCreate(ctx, "Affectionate")
			require.NoError(t, err)
			assert.True(t, created)
			assert.NotZero(t, tag.ID)
			assert.Equal(t, "Affectionate", tag.Name)
		})

		t.Run("FindOrCreateFoldsCase", func(t *testing.T) {
			first, created, err := repo.FindOrCreate(ctx, "Gentle")
			require.NoError(t, err)
			assert.True(t, created)

			// Different casing resolves to the same tag, original casing wins
			second, created, err := repo.FindOrCreate(ctx, "gentle")
			require.NoError(t, err)
			assert.False(t, created)
			assert.Equal(t, first.ID, second.ID)
			assert.Equal(t, "Gentle", second.Name)
		})

		t.Run("ByNameFold", func(t *testing.T) {
			_, _, err := repo.FindOrCreate(ctx, "Vocal")
			require.NoError(t, err)

			tag, err := repo.ByNameFold(ctx, "VOCAL")
			require.NoError(t, err)
			require.NotNil(t, tag)
			assert.Equal(t, "Vocal", tag.Name)

			tag, err = repo.ByNameFold(ctx, "unseen")
			require.NoError(t, err)
			assert.Nil(t, tag)
		})
	})
}

func TestCatTagRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewCatTagRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveIgnoreConflict", func(t *testing.T) {
			cat, err := fixtures.CreateTestCat()
			require.NoError(t, err)
			tag, err := fixtures.CreateTestTag("Loyal")
			require.NoError(t, err)

			created, err := repo.SaveIgnoreConflict(ctx, &models.CatTag{CatID: cat.ID, TagID: tag.ID})
			require.NoError(t, err)
			assert.True(t, created)

			// The association is unique per (cat, tag) pair
			created, err = repo.SaveIgnoreConflict(ctx, &models.CatTag{CatID: cat.ID, TagID: tag.ID})
			require.NoError(t, err)
			assert.False(t, created)

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("ListByCat", func(t *testing.T) {
			cat, err := fixtures.CreateTaggedCat("Smart", "Quiet")
			require.NoError(t, err)

			catTags, err := repo.ListByCat(ctx, cat.ID)
			require.NoError(t, err)
			require.Len(t, catTags, 2)
			for _, ct := range catTags {
				assert.NotNil(t, ct.Tag)
			}
		})
	})
}
