package consumption

import (
	"context"
	"testing"
	"time"

	"github.com/celiogix/pantrysync/internal/database"
	"github.com/celiogix/pantrysync/internal/models"
	"github.com/celiogix/pantrysync/internal/repository"
	"github.com/celiogix/pantrysync/internal/services/shopping"
	"github.com/celiogix/pantrysync/internal/testutil"
)

type syncFixture struct {
	db       *database.DB
	pantry   *repository.PantryRepository
	recipes  *repository.RecipeRepository
	menu     *repository.MenuRepository
	shopping *repository.ShoppingRepository
	service  *Service
}

func setupSync(t *testing.T, opts Options) *syncFixture {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrator, err := database.NewMigrator(db)
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}
	if _, err := migrator.MigrateUp(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	shoppingRepo, err := repository.NewShoppingRepository(db.DB, repository.DefaultColumnMap())
	if err != nil {
		t.Fatalf("failed to create shopping repository: %v", err)
	}

	return &syncFixture{
		db:       db,
		pantry:   repository.NewPantryRepository(db.DB),
		recipes:  repository.NewRecipeRepository(db.DB),
		menu:     repository.NewMenuRepository(db.DB),
		shopping: shoppingRepo,
		service:  NewService(db, shopping.NewMerger(shoppingRepo, nil), opts, nil),
	}
}

// seedMeal creates a pantry item, a one-ingredient recipe linked to it, and
// a menu entry scheduled for the given date.
func (f *syncFixture) seedMeal(t *testing.T, item *models.PantryItem, ing *models.RecipeIngredient, date time.Time, servings float64) *models.MenuEntry {
	t.Helper()
	ctx := context.Background()

	if item != nil {
		if err := f.pantry.Create(ctx, nil, item); err != nil {
			t.Fatalf("failed to create pantry item: %v", err)
		}
	}

	recipe := testutil.FixtureRecipe()
	if err := f.recipes.Create(ctx, nil, recipe); err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	ing.RecipeID = recipe.ID
	if item != nil && ing.LinkedPantryID == nil {
		ing.LinkedPantryID = &item.ID
	}
	if err := f.recipes.AddIngredient(ctx, nil, ing); err != nil {
		t.Fatalf("failed to add ingredient: %v", err)
	}

	entry := testutil.FixtureMenuEntry(recipe.ID, func(e *models.MenuEntry) {
		e.Date = date
		e.Servings = servings
	})
	if err := f.menu.Create(ctx, nil, entry); err != nil {
		t.Fatalf("failed to create menu entry: %v", err)
	}
	return entry
}

var testDay = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func TestSyncMenuConsumption_DeductsAndConverts(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	// Pantry tracks grams; the recipe measures in kilograms
	item := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Name = "Flour"
		i.Unit = "g"
		i.Amount = 1000
	})
	f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Quantity = 0.2
		i.Unit = "kg"
	}), testDay, 2)

	report, err := f.service.SyncMenuConsumption(ctx, testDay)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if report.ProcessedEntries != 1 {
		t.Errorf("expected 1 processed entry, got %d", report.ProcessedEntries)
	}
	if report.UpdatedItems != 1 {
		t.Errorf("expected 1 updated item, got %d", report.UpdatedItems)
	}

	// 0.2 kg x 2 servings = 400 g
	found, err := f.pantry.GetByID(ctx, nil, item.ID)
	if err != nil {
		t.Fatalf("failed to get pantry item: %v", err)
	}
	if found.Amount != 600 {
		t.Errorf("expected 600 g remaining, got %g", found.Amount)
	}
	if found.BaseAmount == nil || *found.BaseAmount != 1000 {
		t.Errorf("expected baseline 1000, got %v", found.BaseAmount)
	}
}

func TestSyncMenuConsumption_Idempotent(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	item := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Amount = 500
	})
	f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Quantity = 100
		i.Unit = "g"
	}), testDay, 1)

	if _, err := f.service.SyncMenuConsumption(ctx, testDay); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	second, err := f.service.SyncMenuConsumption(ctx, testDay)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if second.ProcessedEntries != 0 {
		t.Errorf("expected no entries on rerun, got %d", second.ProcessedEntries)
	}

	found, err := f.pantry.GetByID(ctx, nil, item.ID)
	if err != nil {
		t.Fatalf("failed to get pantry item: %v", err)
	}
	if found.Amount != 400 {
		t.Errorf("expected single deduction to 400, got %g", found.Amount)
	}
}

func TestSyncMenuConsumption_CutoffExcludesFutureEntries(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	item := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Amount = 500
	})
	f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Quantity = 100
		i.Unit = "g"
	}), testDay.AddDate(0, 0, 7), 1)

	report, err := f.service.SyncMenuConsumption(ctx, testDay)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if report.ProcessedEntries != 0 {
		t.Errorf("expected future entry untouched, processed %d", report.ProcessedEntries)
	}

	found, err := f.pantry.GetByID(ctx, nil, item.ID)
	if err != nil {
		t.Fatalf("failed to get pantry item: %v", err)
	}
	if found.Amount != 500 {
		t.Errorf("expected amount unchanged, got %g", found.Amount)
	}
}

func TestSyncMenuConsumption_ClampsAtZero(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	item := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Amount = 50
	})
	f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Quantity = 200
		i.Unit = "g"
	}), testDay, 1)

	if _, err := f.service.SyncMenuConsumption(ctx, testDay); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	found, err := f.pantry.GetByID(ctx, nil, item.ID)
	if err != nil {
		t.Fatalf("failed to get pantry item: %v", err)
	}
	if found.Amount != 0 {
		t.Errorf("expected amount clamped to 0, got %g", found.Amount)
	}
}

func TestSyncMenuConsumption_ZeroQuantityStillEvaluatesThreshold(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	// Already below its cutoff: baseline 10, ratio 0.5 means cutoff 5
	item := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Name = "Paprika"
		i.Unit = "g"
		i.Amount = 2
		i.BaseAmount = testutil.Float64Ptr(10)
		i.Threshold = testutil.Float64Ptr(0.5)
	})
	f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Name = "Paprika"
		i.Quantity = 0
		i.Unit = "g"
	}), testDay, 1)

	report, err := f.service.SyncMenuConsumption(ctx, testDay)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	// A zero deduction is still an applied update and still checks the level
	if report.UpdatedItems != 1 {
		t.Errorf("expected 1 updated item, got %d", report.UpdatedItems)
	}
	if report.SkippedIngredients != 0 {
		t.Errorf("expected no skipped ingredients, got %d", report.SkippedIngredients)
	}
	if report.AutoAdded != 1 {
		t.Errorf("expected depleted item auto-added, got %d", report.AutoAdded)
	}

	found, err := f.pantry.GetByID(ctx, nil, item.ID)
	if err != nil {
		t.Fatalf("failed to get pantry item: %v", err)
	}
	if found.Amount != 2 {
		t.Errorf("expected amount unchanged at 2, got %g", found.Amount)
	}

	entries, err := f.shopping.List(ctx)
	if err != nil {
		t.Fatalf("failed to list shopping entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Paprika" {
		t.Fatalf("expected Paprika on the shopping list, got %+v", entries)
	}
}

func TestSyncMenuConsumption_SkipsUnreconcilableUnits(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	// Volume recipe unit against a mass pantry unit
	item := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Unit = "g"
		i.Amount = 500
	})
	f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Quantity = 2
		i.Unit = "cup"
	}), testDay, 1)

	report, err := f.service.SyncMenuConsumption(ctx, testDay)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if report.SkippedIngredients != 1 {
		t.Errorf("expected 1 skipped ingredient, got %d", report.SkippedIngredients)
	}
	if report.UpdatedItems != 0 {
		t.Errorf("expected no deductions, got %d", report.UpdatedItems)
	}
	if report.ProcessedEntries != 1 {
		t.Errorf("expected entry still marked applied, processed %d", report.ProcessedEntries)
	}

	found, err := f.pantry.GetByID(ctx, nil, item.ID)
	if err != nil {
		t.Fatalf("failed to get pantry item: %v", err)
	}
	if found.Amount != 500 {
		t.Errorf("expected amount unchanged, got %g", found.Amount)
	}
}

func TestSyncMenuConsumption_UnknownUnitPassthrough(t *testing.T) {
	t.Run("identical unknown units deduct as-is", func(t *testing.T) {
		f := setupSync(t, DefaultOptions())
		ctx := context.Background()

		item := testutil.FixturePantryItem(func(i *models.PantryItem) {
			i.Name = "Eggs"
			i.Unit = "pcs"
			i.Amount = 12
		})
		f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
			i.Name = "Eggs"
			i.Quantity = 3
			i.Unit = "pcs"
		}), testDay, 1)

		if _, err := f.service.SyncMenuConsumption(ctx, testDay); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		found, err := f.pantry.GetByID(ctx, nil, item.ID)
		if err != nil {
			t.Fatalf("failed to get pantry item: %v", err)
		}
		if found.Amount != 9 {
			t.Errorf("expected 9 pcs remaining, got %g", found.Amount)
		}
	})

	t.Run("passthrough disabled skips identical unknown units", func(t *testing.T) {
		opts := DefaultOptions()
		opts.AllowUnitPassthrough = false
		f := setupSync(t, opts)
		ctx := context.Background()

		item := testutil.FixturePantryItem(func(i *models.PantryItem) {
			i.Name = "Eggs"
			i.Unit = "pcs"
			i.Amount = 12
		})
		f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
			i.Name = "Eggs"
			i.Quantity = 3
			i.Unit = "pcs"
		}), testDay, 1)

		report, err := f.service.SyncMenuConsumption(ctx, testDay)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if report.SkippedIngredients != 1 {
			t.Errorf("expected 1 skipped ingredient, got %d", report.SkippedIngredients)
		}
	})
}

func TestSyncMenuConsumption_SkipsUnlinkedAndMissing(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	// Unlinked ingredient
	f.seedMeal(t, nil, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Name = "Mystery Spice"
		i.Quantity = 1
	}), testDay, 1)

	// Linked ingredient whose pantry item is deleted before the sync
	item := testutil.FixturePantryItem()
	f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Quantity = 100
		i.Unit = "g"
	}), testDay, 1)
	if err := f.pantry.Delete(ctx, nil, item.ID); err != nil {
		t.Fatalf("failed to delete pantry item: %v", err)
	}

	report, err := f.service.SyncMenuConsumption(ctx, testDay)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if report.ProcessedEntries != 2 {
		t.Errorf("expected both entries applied, got %d", report.ProcessedEntries)
	}
	if report.SkippedIngredients != 2 {
		t.Errorf("expected 2 skipped ingredients, got %d", report.SkippedIngredients)
	}
	if report.UpdatedItems != 0 {
		t.Errorf("expected no deductions, got %d", report.UpdatedItems)
	}
}

func TestSyncMenuConsumption_ThresholdAutoAdd(t *testing.T) {
	t.Run("ratio threshold", func(t *testing.T) {
		f := setupSync(t, DefaultOptions())
		ctx := context.Background()

		item := testutil.FixturePantryItem(func(i *models.PantryItem) {
			i.Name = "Milk"
			i.Unit = "ml"
			i.Amount = 1000
			i.Threshold = testutil.Float64Ptr(0.25)
		})
		f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
			i.Name = "Milk"
			i.Quantity = 800
			i.Unit = "ml"
		}), testDay, 1)

		report, err := f.service.SyncMenuConsumption(ctx, testDay)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		// Baseline 1000, ratio 0.25 means cutoff 250; 200 remaining triggers
		if report.AutoAdded != 1 {
			t.Fatalf("expected 1 auto-added entry, got %d", report.AutoAdded)
		}

		entries, err := f.shopping.List(ctx)
		if err != nil {
			t.Fatalf("failed to list shopping entries: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 shopping entry, got %d", len(entries))
		}
		got := entries[0]
		if got.Name != "Milk" {
			t.Errorf("expected Milk, got %s", got.Name)
		}
		if got.Quantity != 1 {
			t.Errorf("expected restock quantity 1, got %g", got.Quantity)
		}
		if got.LinkedPantryID == nil || *got.LinkedPantryID != item.ID {
			t.Errorf("expected link to item %d, got %v", item.ID, got.LinkedPantryID)
		}
		want := "Auto-added: remaining 200 ml <= threshold 250"
		if got.Notes != want {
			t.Errorf("expected notes %q, got %q", want, got.Notes)
		}
	})

	t.Run("absolute threshold", func(t *testing.T) {
		f := setupSync(t, DefaultOptions())
		ctx := context.Background()

		item := testutil.FixturePantryItem(func(i *models.PantryItem) {
			i.Name = "Rice"
			i.Unit = "g"
			i.Amount = 600
			i.Threshold = testutil.Float64Ptr(500)
		})
		f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
			i.Name = "Rice"
			i.Quantity = 100
			i.Unit = "g"
		}), testDay, 1)

		report, err := f.service.SyncMenuConsumption(ctx, testDay)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		// 500 remaining equals the absolute threshold, boundary triggers
		if report.AutoAdded != 1 {
			t.Errorf("expected 1 auto-added entry, got %d", report.AutoAdded)
		}
	})

	t.Run("no threshold never auto-adds", func(t *testing.T) {
		f := setupSync(t, DefaultOptions())
		ctx := context.Background()

		item := testutil.FixturePantryItem(func(i *models.PantryItem) {
			i.Amount = 100
		})
		f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
			i.Quantity = 100
			i.Unit = "g"
		}), testDay, 1)

		report, err := f.service.SyncMenuConsumption(ctx, testDay)
		if err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if report.AutoAdded != 0 {
			t.Errorf("expected no auto-added entries, got %d", report.AutoAdded)
		}
	})
}

func TestSyncMenuConsumption_RepeatedBreachMergesShoppingLine(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	item := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Name = "Butter"
		i.Unit = "g"
		i.Amount = 300
		i.Threshold = testutil.Float64Ptr(250)
	})
	f.seedMeal(t, item, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Name = "Butter"
		i.Quantity = 100
		i.Unit = "g"
	}), testDay, 1)
	f.seedMeal(t, nil, testutil.FixtureIngredient(0, func(i *models.RecipeIngredient) {
		i.Name = "Butter"
		i.Quantity = 100
		i.Unit = "g"
		i.LinkedPantryID = &item.ID
	}), testDay.AddDate(0, 0, 1), 1)

	report, err := f.service.SyncMenuConsumption(ctx, testDay.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if report.AutoAdded != 2 {
		t.Errorf("expected 2 threshold breaches, got %d", report.AutoAdded)
	}

	// Both breaches fold into one open line with the summed quantity
	entries, err := f.shopping.List(ctx)
	if err != nil {
		t.Fatalf("failed to list shopping entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 merged shopping entry, got %d", len(entries))
	}
	if entries[0].Quantity != 2 {
		t.Errorf("expected merged quantity 2, got %g", entries[0].Quantity)
	}
}

func TestSyncMenuConsumption_SoupScenario(t *testing.T) {
	f := setupSync(t, DefaultOptions())
	ctx := context.Background()

	// Pantry: 2000 ml broth with a 25% threshold, 500 g carrots without one
	broth := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Name = "Broth"
		i.Unit = "ml"
		i.Amount = 2000
		i.Threshold = testutil.Float64Ptr(0.25)
	})
	carrots := testutil.FixturePantryItem(func(i *models.PantryItem) {
		i.Name = "Carrots"
		i.Unit = "g"
		i.Amount = 500
	})
	if err := f.pantry.Create(ctx, nil, broth); err != nil {
		t.Fatalf("failed to create broth: %v", err)
	}
	if err := f.pantry.Create(ctx, nil, carrots); err != nil {
		t.Fatalf("failed to create carrots: %v", err)
	}

	recipe := testutil.FixtureRecipe(func(r *models.Recipe) { r.Title = "Soup" })
	if err := f.recipes.Create(ctx, nil, recipe); err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	ingredients := []*models.RecipeIngredient{
		{RecipeID: recipe.ID, Name: "Broth", Quantity: 2, Unit: "cup", LinkedPantryID: &broth.ID},
		{RecipeID: recipe.ID, Name: "Carrots", Quantity: 150, Unit: "g", LinkedPantryID: &carrots.ID},
	}
	for _, ing := range ingredients {
		if err := f.recipes.AddIngredient(ctx, nil, ing); err != nil {
			t.Fatalf("failed to add ingredient: %v", err)
		}
	}

	entry := testutil.FixtureMenuEntry(recipe.ID, func(e *models.MenuEntry) {
		e.Date = testDay
		e.Servings = 2
	})
	if err := f.menu.Create(ctx, nil, entry); err != nil {
		t.Fatalf("failed to create menu entry: %v", err)
	}

	report, err := f.service.SyncMenuConsumption(ctx, testDay)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if report.ProcessedEntries != 1 {
		t.Errorf("expected 1 processed entry, got %d", report.ProcessedEntries)
	}
	if report.UpdatedItems != 2 {
		t.Errorf("expected 2 deductions, got %d", report.UpdatedItems)
	}

	// 2 cups x 2 servings = 4 cups = 946.352946 ml
	gotBroth, err := f.pantry.GetByID(ctx, nil, broth.ID)
	if err != nil {
		t.Fatalf("failed to get broth: %v", err)
	}
	wantBroth := 2000 - 946.352946
	if diff := gotBroth.Amount - wantBroth; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected broth %g ml, got %g", wantBroth, gotBroth.Amount)
	}

	// 150 g x 2 servings = 300 g
	gotCarrots, err := f.pantry.GetByID(ctx, nil, carrots.ID)
	if err != nil {
		t.Fatalf("failed to get carrots: %v", err)
	}
	if gotCarrots.Amount != 200 {
		t.Errorf("expected carrots 200 g, got %g", gotCarrots.Amount)
	}

	// Broth stays above its 500 ml cutoff, so nothing is auto-added
	if report.AutoAdded != 0 {
		t.Errorf("expected no auto-added entries, got %d", report.AutoAdded)
	}

	// Rerun is a no-op
	second, err := f.service.SyncMenuConsumption(ctx, testDay)
	if err != nil {
		t.Fatalf("rerun failed: %v", err)
	}
	if second.ProcessedEntries != 0 {
		t.Errorf("expected idempotent rerun, processed %d", second.ProcessedEntries)
	}
}
