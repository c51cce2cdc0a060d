// Package workspace holds the state of each signed-in user and mediates
// between the persistence and generation gateways.
//
// A Workspace is created when its user signs in and torn down on logout.
// Operations catch every failure at their boundary: the localized message
// is stored as the banner of the area that failed and the error is returned
// to the caller, so the surface can render either.
package workspace

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/planner"
	"comida-a-casa/internal/profile"
	"comida-a-casa/internal/recipe"
	"comida-a-casa/internal/session"
	"comida-a-casa/internal/shopping"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Area identifies where an error banner is shown.
type Area string

const (
	AreaProfiles Area = "profiles"
	AreaRecipes  Area = "recipes"
	AreaMenus    Area = "menus"
	AreaMenu     Area = "menu"
	AreaRecipe   Area = "recipe"
	AreaShopping Area = "shopping"
	AreaImport   Area = "import"
	AreaClip     Area = "clip"
)

// ParseArea validates a banner area name.
func ParseArea(s string) (Area, error) {
	switch a := Area(s); a {
	case AreaProfiles, AreaRecipes, AreaMenus, AreaMenu, AreaRecipe, AreaShopping, AreaImport, AreaClip:
		return a, nil
	}
	return "", apperr.New(apperr.NotFound, "workspace.area", "Sección desconocida.")
}

const (
	loadFailedMessage  = "No se pudieron cargar tus datos."
	noMenuMessage      = "Primero genera un menú."
	noRecipeMessage    = "La receta seleccionada ya no existe."
	noSavedMenuMessage = "El menú guardado no existe."
)

// Collections is the persistence gateway of one user.
type Collections interface {
	ListProfiles(ctx context.Context) ([]profile.Profile, error)
	AddProfile(ctx context.Context, p profile.Profile) (profile.Profile, error)
	UpdateProfile(ctx context.Context, p profile.Profile) error
	DeleteProfile(ctx context.Context, id string) error

	ListRecipes(ctx context.Context) ([]recipe.UserRecipe, error)
	AddRecipe(ctx context.Context, d recipe.Draft) (recipe.UserRecipe, error)
	UpdateRecipe(ctx context.Context, r recipe.UserRecipe) (recipe.UserRecipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	ImportRecipes(ctx context.Context, drafts []recipe.Draft) ([]recipe.UserRecipe, error)

	ListSavedMenus(ctx context.Context) ([]menu.SavedMenu, error)
	SaveMenu(ctx context.Context, plan menu.Plan) (menu.SavedMenu, error)
	DeleteSavedMenu(ctx context.Context, id string) error
}

// Generation produces menus and their derived views.
type Generation interface {
	GenerateMenuPlan(ctx context.Context, req planner.MenuRequest) (planner.MenuResult, error)
	GetRecipeDetails(ctx context.Context, dish string, profiles []profile.Profile) (planner.RecipeResult, error)
	GenerateShoppingList(ctx context.Context, plan menu.Plan, profiles []profile.Profile) (planner.ShoppingResult, error)
}

// Clipper turns a recipe web page into a draft.
type Clipper interface {
	Clip(ctx context.Context, url string) (recipe.Draft, error)
}

// Workspace is the state of one signed-in user.
type Workspace struct {
	user    session.User
	col     Collections
	gen     Generation
	clipper Clipper
	logger  *zap.Logger

	// loadMu serializes loads so that callers wait for one in flight.
	loadMu sync.Mutex

	mu         sync.Mutex
	closed     bool
	loadErr    error
	profiles   Resource[profile.Profile]
	recipes    Resource[recipe.UserRecipe]
	savedMenus Resource[menu.SavedMenu]
	activeMenu menu.Plan
	shopping   []shopping.Item
	errors     map[Area]string
}

func newWorkspace(user session.User, col Collections, gen Generation, clipper Clipper, logger *zap.Logger) *Workspace {
	return &Workspace{
		user:       user,
		col:        col,
		gen:        gen,
		clipper:    clipper,
		logger:     logger.With(zap.String("uid", user.UID)),
		profiles:   newResource[profile.Profile](),
		recipes:    newResource[recipe.UserRecipe](),
		savedMenus: newResource[menu.SavedMenu](),
		errors:     make(map[Area]string),
	}
}

// User returns the owner of the workspace.
func (w *Workspace) User() session.User { return w.user }

// fail records err as the banner of area and returns it.
func (w *Workspace) fail(area Area, err error) error {
	msg := apperr.UserMessage(err)
	w.logger.Warn("operation failed", zap.String("area", string(area)), zap.Error(err))
	w.mu.Lock()
	w.errors[area] = msg
	w.mu.Unlock()
	return err
}

func (w *Workspace) clear(area Area) {
	w.mu.Lock()
	delete(w.errors, area)
	w.mu.Unlock()
}

// Load fetches the three collections concurrently. Either all of them load
// or all of them end in the error state.
func (w *Workspace) Load(ctx context.Context) error {
	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	return w.load(ctx)
}

// Ready waits for a load in flight and loads the collections again when
// the last attempt failed. It returns nil once they are loaded.
func (w *Workspace) Ready(ctx context.Context) error {
	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	w.mu.Lock()
	closed, state := w.closed, w.profiles.State
	w.mu.Unlock()
	switch {
	case closed:
		return apperr.New(apperr.AuthFailure, "workspace.ready", session.ExpiredMessage)
	case state == Loaded:
		return nil
	}
	return w.load(ctx)
}

func (w *Workspace) load(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return apperr.New(apperr.AuthFailure, "workspace.load", session.ExpiredMessage)
	}
	for _, move := range []func(State) error{w.profiles.moveTo, w.recipes.moveTo, w.savedMenus.moveTo} {
		if err := move(Loading); err != nil {
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()

	var (
		profiles []profile.Profile
		recipes  []recipe.UserRecipe
		saved    []menu.SavedMenu
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profiles, err = w.col.ListProfiles(gctx)
		return err
	})
	g.Go(func() (err error) {
		recipes, err = w.col.ListRecipes(gctx)
		return err
	})
	g.Go(func() (err error) {
		saved, err = w.col.ListSavedMenus(gctx)
		return err
	})
	err := g.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.profiles.State != Loading {
		// Torn down while loading.
		return apperr.New(apperr.AuthFailure, "workspace.load", session.ExpiredMessage)
	}
	if err != nil {
		w.logger.Error("failed to load user data", zap.Error(err))
		_ = w.profiles.moveTo(Failed)
		_ = w.recipes.moveTo(Failed)
		_ = w.savedMenus.moveTo(Failed)
		for _, a := range []Area{AreaProfiles, AreaRecipes, AreaMenus} {
			w.errors[a] = loadFailedMessage
		}
		w.loadErr = apperr.Wrap(loadFailureKind(err), "workspace.load", loadFailedMessage, err)
		return w.loadErr
	}
	w.loadErr = nil

	w.profiles.Items, w.recipes.Items, w.savedMenus.Items = nonNil(profiles), nonNil(recipes), nonNil(saved)
	_ = w.profiles.moveTo(Loaded)
	_ = w.recipes.moveTo(Loaded)
	_ = w.savedMenus.moveTo(Loaded)
	for _, a := range []Area{AreaProfiles, AreaRecipes, AreaMenus} {
		delete(w.errors, a)
	}
	return nil
}

// Teardown clears every collection and the active menu.
func (w *Workspace) Teardown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	_ = w.profiles.moveTo(Idle)
	_ = w.recipes.moveTo(Idle)
	_ = w.savedMenus.moveTo(Idle)
	w.activeMenu = nil
	w.shopping = nil
	w.errors = make(map[Area]string)
}

func (w *Workspace) ensureLoaded(op string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.profiles.State == Loaded:
		return nil
	case w.closed:
		return apperr.New(apperr.AuthFailure, op, session.ExpiredMessage)
	case w.loadErr != nil:
		return apperr.Wrap(loadFailureKind(w.loadErr), op, loadFailedMessage, w.loadErr)
	default:
		return apperr.New(apperr.PersistenceFailure, op, loadFailedMessage)
	}
}

func loadFailureKind(err error) apperr.Kind {
	if kind := apperr.KindOf(err); kind != "" {
		return kind
	}
	return apperr.PersistenceFailure
}

// DismissError hides the banner of area.
func (w *Workspace) DismissError(area Area) {
	w.clear(area)
}

// View is a snapshot of the workspace for rendering.
type View struct {
	User         session.User                `json:"user"`
	Profiles     Resource[profile.Profile]   `json:"profiles"`
	Recipes      Resource[recipe.UserRecipe] `json:"recipes"`
	SavedMenus   Resource[menu.SavedMenu]    `json:"savedMenus"`
	ActiveMenu   menu.Plan                   `json:"activeMenu,omitempty"`
	ShoppingList []shopping.Item             `json:"shoppingList,omitempty"`
	Errors       map[Area]string             `json:"errors"`
}

// View returns a copy of the current state.
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := make(map[Area]string, len(w.errors))
	for k, v := range w.errors {
		errs[k] = v
	}
	return View{
		User:         w.user,
		Profiles:     Resource[profile.Profile]{State: w.profiles.State, Items: append([]profile.Profile{}, w.profiles.Items...)},
		Recipes:      Resource[recipe.UserRecipe]{State: w.recipes.State, Items: append([]recipe.UserRecipe{}, w.recipes.Items...)},
		SavedMenus:   Resource[menu.SavedMenu]{State: w.savedMenus.State, Items: append([]menu.SavedMenu{}, w.savedMenus.Items...)},
		ActiveMenu:   w.activeMenu,
		ShoppingList: append([]shopping.Item(nil), w.shopping...),
		Errors:       errs,
	}
}

// Profiles

func (w *Workspace) AddProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	if err := w.ensureLoaded("workspace.profiles.add"); err != nil {
		return profile.Profile{}, w.fail(AreaProfiles, err)
	}
	added, err := w.col.AddProfile(ctx, p)
	if err != nil {
		return profile.Profile{}, w.fail(AreaProfiles, err)
	}
	w.mu.Lock()
	w.profiles.Items = append(w.profiles.Items, added)
	delete(w.errors, AreaProfiles)
	w.mu.Unlock()
	return added, nil
}

func (w *Workspace) UpdateProfile(ctx context.Context, p profile.Profile) error {
	if err := w.ensureLoaded("workspace.profiles.update"); err != nil {
		return w.fail(AreaProfiles, err)
	}
	if err := w.col.UpdateProfile(ctx, p); err != nil {
		return w.fail(AreaProfiles, err)
	}
	w.mu.Lock()
	for i := range w.profiles.Items {
		if w.profiles.Items[i].ID == p.ID {
			w.profiles.Items[i] = p
		}
	}
	delete(w.errors, AreaProfiles)
	w.mu.Unlock()
	return nil
}

func (w *Workspace) DeleteProfile(ctx context.Context, id string) error {
	if err := w.ensureLoaded("workspace.profiles.delete"); err != nil {
		return w.fail(AreaProfiles, err)
	}
	if err := w.col.DeleteProfile(ctx, id); err != nil {
		return w.fail(AreaProfiles, err)
	}
	w.mu.Lock()
	w.profiles.Items = removeWhere(w.profiles.Items, func(p profile.Profile) bool { return p.ID == id })
	delete(w.errors, AreaProfiles)
	w.mu.Unlock()
	return nil
}

// Recipes

func (w *Workspace) AddRecipe(ctx context.Context, d recipe.Draft) (recipe.UserRecipe, error) {
	if err := w.ensureLoaded("workspace.recipes.add"); err != nil {
		return recipe.UserRecipe{}, w.fail(AreaRecipes, err)
	}
	added, err := w.col.AddRecipe(ctx, d)
	if err != nil {
		return recipe.UserRecipe{}, w.fail(AreaRecipes, err)
	}
	w.appendRecipes(AreaRecipes, added)
	return added, nil
}

func (w *Workspace) UpdateRecipe(ctx context.Context, r recipe.UserRecipe) (recipe.UserRecipe, error) {
	if err := w.ensureLoaded("workspace.recipes.update"); err != nil {
		return recipe.UserRecipe{}, w.fail(AreaRecipes, err)
	}
	updated, err := w.col.UpdateRecipe(ctx, r)
	if err != nil {
		return recipe.UserRecipe{}, w.fail(AreaRecipes, err)
	}
	w.mu.Lock()
	for i := range w.recipes.Items {
		if w.recipes.Items[i].ID == updated.ID {
			w.recipes.Items[i] = updated
		}
	}
	delete(w.errors, AreaRecipes)
	w.mu.Unlock()
	return updated, nil
}

func (w *Workspace) DeleteRecipe(ctx context.Context, id string) error {
	if err := w.ensureLoaded("workspace.recipes.delete"); err != nil {
		return w.fail(AreaRecipes, err)
	}
	if err := w.col.DeleteRecipe(ctx, id); err != nil {
		return w.fail(AreaRecipes, err)
	}
	w.mu.Lock()
	w.recipes.Items = removeWhere(w.recipes.Items, func(r recipe.UserRecipe) bool { return r.ID == id })
	delete(w.errors, AreaRecipes)
	w.mu.Unlock()
	return nil
}

// ImportCSV parses a recipe CSV and stores every record atomically.
func (w *Workspace) ImportCSV(ctx context.Context, r io.Reader) ([]recipe.UserRecipe, error) {
	if err := w.ensureLoaded("workspace.recipes.import"); err != nil {
		return nil, w.fail(AreaImport, err)
	}
	drafts, err := recipe.ParseCSV(r)
	if err != nil {
		return nil, w.fail(AreaImport, err)
	}
	imported, err := w.col.ImportRecipes(ctx, drafts)
	if err != nil {
		return nil, w.fail(AreaImport, err)
	}
	w.appendRecipes(AreaImport, imported...)
	return imported, nil
}

// ClipRecipe extracts the recipe at url and adds it to the collection.
func (w *Workspace) ClipRecipe(ctx context.Context, url string) (recipe.UserRecipe, error) {
	if err := w.ensureLoaded("workspace.recipes.clip"); err != nil {
		return recipe.UserRecipe{}, w.fail(AreaClip, err)
	}
	if w.clipper == nil {
		return recipe.UserRecipe{}, w.fail(AreaClip, apperr.New(apperr.GenerationFailure, "workspace.recipes.clip", apperr.DefaultMessage))
	}
	draft, err := w.clipper.Clip(ctx, url)
	if err != nil {
		return recipe.UserRecipe{}, w.fail(AreaClip, err)
	}
	added, err := w.col.AddRecipe(ctx, draft)
	if err != nil {
		return recipe.UserRecipe{}, w.fail(AreaClip, err)
	}
	w.appendRecipes(AreaClip, added)
	return added, nil
}

func (w *Workspace) appendRecipes(area Area, rs ...recipe.UserRecipe) {
	w.mu.Lock()
	w.recipes.Items = append(w.recipes.Items, rs...)
	delete(w.errors, area)
	w.mu.Unlock()
}

// Recipe returns the stored recipe with id.
func (w *Workspace) Recipe(id string) (recipe.UserRecipe, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, r := range w.recipes.Items {
		if r.ID == id {
			return r, true
		}
	}
	return recipe.UserRecipe{}, false
}

// RecipesByCategory filters the collection; an empty category matches all.
func (w *Workspace) RecipesByCategory(category recipe.Category) []recipe.UserRecipe {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]recipe.UserRecipe, 0, len(w.recipes.Items))
	for _, r := range w.recipes.Items {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Menu generation

// MenuOptions are the user's choices for a new menu.
type MenuOptions struct {
	Start             time.Time
	Days              int
	Preferences       string
	IncludeBreakfasts bool
}

// GenerateMenu replaces the active menu with a new one. On failure the
// previous menu is kept.
func (w *Workspace) GenerateMenu(ctx context.Context, opts MenuOptions) (menu.Plan, error) {
	if err := w.ensureLoaded("workspace.menu.generate"); err != nil {
		return nil, w.fail(AreaMenu, err)
	}
	w.mu.Lock()
	req := planner.MenuRequest{
		Start:             opts.Start,
		Days:              opts.Days,
		Preferences:       opts.Preferences,
		Profiles:          append([]profile.Profile(nil), w.profiles.Items...),
		Recipes:           append([]recipe.UserRecipe(nil), w.recipes.Items...),
		IncludeBreakfasts: opts.IncludeBreakfasts,
	}
	w.mu.Unlock()

	res, err := w.gen.GenerateMenuPlan(ctx, req)
	if err != nil {
		return nil, w.fail(AreaMenu, err)
	}

	w.mu.Lock()
	w.activeMenu = res.Plan
	w.shopping = nil
	delete(w.errors, AreaMenu)
	delete(w.errors, AreaShopping)
	w.mu.Unlock()
	return res.Plan, nil
}

// ActiveMenu returns the menu currently shown, if any.
func (w *Workspace) ActiveMenu() (menu.Plan, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeMenu, w.activeMenu != nil
}

// RecipeDetails requests the full recipe of dish for the family.
func (w *Workspace) RecipeDetails(ctx context.Context, dish string) (recipe.Detail, error) {
	w.mu.Lock()
	profiles := append([]profile.Profile(nil), w.profiles.Items...)
	w.mu.Unlock()

	res, err := w.gen.GetRecipeDetails(ctx, dish, profiles)
	if err != nil {
		return recipe.Detail{}, w.fail(AreaRecipe, err)
	}
	w.clear(AreaRecipe)
	return res.Recipe, nil
}

// Swap

// SwapRequest places the user's recipe RecipeID into one slot.
type SwapRequest struct {
	Date     string
	MealType menu.MealType
	RecipeID string
}

// SwapPreview is the meal a swap would place and its balance advisory.
type SwapPreview struct {
	Date     string           `json:"date"`
	MealType menu.MealType    `json:"mealType"`
	Current  *menu.MealDetail `json:"current,omitempty"`
	Meal     menu.MealDetail  `json:"meal"`
	Advisory string           `json:"advisory,omitempty"`
}

func (w *Workspace) swapTarget(req SwapRequest) (menu.Plan, SwapPreview, error) {
	const op = "workspace.menu.swap"
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.activeMenu == nil {
		return nil, SwapPreview{}, apperr.New(apperr.NotFound, op, noMenuMessage)
	}
	day, ok := w.activeMenu[req.Date]
	if !ok {
		return nil, SwapPreview{}, apperr.New(apperr.MalformedInput, op, fmt.Sprintf("El día %s no forma parte del menú.", req.Date))
	}
	if _, err := menu.ParseMealType(string(req.MealType)); err != nil {
		return nil, SwapPreview{}, apperr.Wrap(apperr.MalformedInput, op, "Comida no válida.", err)
	}

	var chosen *recipe.UserRecipe
	for i := range w.recipes.Items {
		if w.recipes.Items[i].ID == req.RecipeID {
			chosen = &w.recipes.Items[i]
			break
		}
	}
	if chosen == nil {
		return nil, SwapPreview{}, apperr.New(apperr.NotFound, op, noRecipeMessage)
	}

	meal := menu.MealFromRecipe(*chosen)
	preview := SwapPreview{
		Date:     req.Date,
		MealType: req.MealType,
		Meal:     meal,
		Advisory: menu.BalanceAdvisory(day, req.MealType, meal),
	}
	if current, ok := day.Slot(req.MealType); ok {
		preview.Current = &current
	}
	return w.activeMenu, preview, nil
}

// PreviewSwap shows what a swap would change without applying it.
func (w *Workspace) PreviewSwap(req SwapRequest) (SwapPreview, error) {
	_, preview, err := w.swapTarget(req)
	if err != nil {
		return SwapPreview{}, w.fail(AreaMenu, err)
	}
	return preview, nil
}

// ConfirmSwap applies a swap to the active menu. Any shopping list built
// from the previous menu is discarded.
func (w *Workspace) ConfirmSwap(req SwapRequest) (menu.Plan, string, error) {
	plan, preview, err := w.swapTarget(req)
	if err != nil {
		return nil, "", w.fail(AreaMenu, err)
	}
	next, advisory, err := menu.ConfirmSwap(plan, req.Date, req.MealType, preview.Meal)
	if err != nil {
		return nil, "", w.fail(AreaMenu, apperr.Wrap(apperr.MalformedInput, "workspace.menu.swap", "No se pudo cambiar el plato.", err))
	}

	w.mu.Lock()
	w.activeMenu = next
	w.shopping = nil
	delete(w.errors, AreaMenu)
	w.mu.Unlock()
	return next, advisory, nil
}

// Shopping list

// GenerateShoppingList builds the shopping list of the active menu.
func (w *Workspace) GenerateShoppingList(ctx context.Context) ([]shopping.Item, error) {
	w.mu.Lock()
	plan := w.activeMenu
	profiles := append([]profile.Profile(nil), w.profiles.Items...)
	w.mu.Unlock()

	if plan == nil {
		return nil, w.fail(AreaShopping, apperr.New(apperr.NotFound, "workspace.shopping", noMenuMessage))
	}
	res, err := w.gen.GenerateShoppingList(ctx, plan, profiles)
	if err != nil {
		return nil, w.fail(AreaShopping, err)
	}

	w.mu.Lock()
	w.shopping = res.Items
	delete(w.errors, AreaShopping)
	w.mu.Unlock()
	return append([]shopping.Item(nil), res.Items...), nil
}

// ShoppingList returns the current list and whether one exists.
func (w *Workspace) ShoppingList() ([]shopping.Item, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]shopping.Item(nil), w.shopping...), w.shopping != nil
}

// ToggleShoppingItem flips the checked flag of item index.
func (w *Workspace) ToggleShoppingItem(index int) ([]shopping.Item, error) {
	const op = "workspace.shopping.toggle"
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.shopping == nil {
		return nil, apperr.New(apperr.NotFound, op, "Primero genera la lista de la compra.")
	}
	next, err := shopping.Toggle(w.shopping, index)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, op, "Ese artículo no está en la lista.", err)
	}
	w.shopping = next
	return append([]shopping.Item(nil), next...), nil
}

// Saved menus

// SaveActiveMenu persists the active menu as a new saved menu.
func (w *Workspace) SaveActiveMenu(ctx context.Context) (menu.SavedMenu, error) {
	if err := w.ensureLoaded("workspace.menus.save"); err != nil {
		return menu.SavedMenu{}, w.fail(AreaMenus, err)
	}
	plan, ok := w.ActiveMenu()
	if !ok {
		return menu.SavedMenu{}, w.fail(AreaMenus, apperr.New(apperr.NotFound, "workspace.menus.save", noMenuMessage))
	}
	saved, err := w.col.SaveMenu(ctx, plan)
	if err != nil {
		return menu.SavedMenu{}, w.fail(AreaMenus, err)
	}

	w.mu.Lock()
	w.savedMenus.Items = append([]menu.SavedMenu{saved}, w.savedMenus.Items...)
	sort.SliceStable(w.savedMenus.Items, func(i, j int) bool {
		return w.savedMenus.Items[i].CreatedAt.After(w.savedMenus.Items[j].CreatedAt)
	})
	delete(w.errors, AreaMenus)
	w.mu.Unlock()
	return saved, nil
}

// SavedMenu returns the saved menu with id.
func (w *Workspace) SavedMenu(id string) (menu.SavedMenu, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range w.savedMenus.Items {
		if m.ID == id {
			return m, nil
		}
	}
	return menu.SavedMenu{}, apperr.New(apperr.NotFound, "workspace.menus.get", noSavedMenuMessage)
}

// DeleteSavedMenu removes a saved menu.
func (w *Workspace) DeleteSavedMenu(ctx context.Context, id string) error {
	if err := w.ensureLoaded("workspace.menus.delete"); err != nil {
		return w.fail(AreaMenus, err)
	}
	if err := w.col.DeleteSavedMenu(ctx, id); err != nil {
		return w.fail(AreaMenus, err)
	}
	w.mu.Lock()
	w.savedMenus.Items = removeWhere(w.savedMenus.Items, func(m menu.SavedMenu) bool { return m.ID == id })
	delete(w.errors, AreaMenus)
	w.mu.Unlock()
	return nil
}

func removeWhere[T any](items []T, match func(T) bool) []T {
	out := items[:0:0]
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
