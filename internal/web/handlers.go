package web

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/dates"
	"comida-a-casa/internal/export"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/profile"
	"comida-a-casa/internal/recipe"
	"comida-a-casa/internal/shopping"
	"comida-a-casa/internal/workspace"

	"github.com/gin-gonic/gin"
)

// defaultMenuDays is used when a generate request does not say.
const defaultMenuDays = 7

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentWorkspace(c).View())
}

// Profiles

func (s *Server) listProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, currentWorkspace(c).View().Profiles)
}

func (s *Server) createProfile(c *gin.Context) {
	var p profile.Profile
	if err := bindJSON(c, &p, profile.InvalidMessage); err != nil {
		respondError(c, err)
		return
	}
	added, err := currentWorkspace(c).AddProfile(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (s *Server) updateProfile(c *gin.Context) {
	var p profile.Profile
	if err := bindJSON(c, &p, profile.InvalidMessage); err != nil {
		respondError(c, err)
		return
	}
	p.ID = c.Param("id")
	if err := currentWorkspace(c).UpdateProfile(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProfile(c *gin.Context) {
	if err := currentWorkspace(c).DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Recipes

func (s *Server) listRecipes(c *gin.Context) {
	var category recipe.Category
	if raw := c.Query("category"); raw != "" {
		category = recipe.ParseCategory(raw)
		if category == recipe.Unclassified && !strings.EqualFold(raw, string(recipe.Unclassified)) {
			respondError(c, apperr.New(apperr.MalformedInput, "web.recipes", "Categoría desconocida."))
			return
		}
	}
	c.JSON(http.StatusOK, currentWorkspace(c).RecipesByCategory(category))
}

func (s *Server) createRecipe(c *gin.Context) {
	var d recipe.Draft
	if err := bindJSON(c, &d, recipe.IncompleteMessage); err != nil {
		respondError(c, err)
		return
	}
	added, err := currentWorkspace(c).AddRecipe(c.Request.Context(), d)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (s *Server) updateRecipe(c *gin.Context) {
	var d recipe.Draft
	if err := bindJSON(c, &d, recipe.IncompleteMessage); err != nil {
		respondError(c, err)
		return
	}
	updated, err := currentWorkspace(c).UpdateRecipe(c.Request.Context(), d.WithID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteRecipe(c *gin.Context) {
	if err := currentWorkspace(c).DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

const noFileMessage = "Selecciona un fichero CSV para importar."

// importRecipes accepts a multipart "file" field or a raw text/csv body.
func (s *Server) importRecipes(c *gin.Context) {
	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			respondError(c, apperr.Wrap(apperr.MalformedInput, "web.import", noFileMessage, err))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, apperr.Wrap(apperr.MalformedInput, "web.import", noFileMessage, err))
			return
		}
		defer f.Close()
		body = f
	}

	imported, err := currentWorkspace(c).ImportCSV(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": len(imported), "recipes": imported})
}

type clipRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (s *Server) clipRecipe(c *gin.Context) {
	var req clipRequest
	if err := bindJSON(c, &req, "Introduce una dirección web válida (http o https)."); err != nil {
		respondError(c, err)
		return
	}
	added, err := currentWorkspace(c).ClipRecipe(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// Menu

type generateRequest struct {
	StartDate         string `json:"startDate" binding:"omitempty,isodate"`
	Days              int    `json:"days" binding:"omitempty,min=1,max=31"`
	Preferences       string `json:"preferences" binding:"max=2000"`
	IncludeBreakfasts bool   `json:"includeBreakfasts"`
}

func (s *Server) generateMenu(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req, ""); err != nil {
			respondError(c, err)
			return
		}
	}

	key := req.StartDate
	if key == "" {
		key = dates.Tomorrow(time.Now())
	}
	start, err := dates.ParseKey(key)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.MalformedInput, "web.menu", invalidRequestMessage, err))
		return
	}
	if req.Days == 0 {
		req.Days = defaultMenuDays
	}

	plan, err := currentWorkspace(c).GenerateMenu(c.Request.Context(), workspace.MenuOptions{
		Start:             start,
		Days:              req.Days,
		Preferences:       req.Preferences,
		IncludeBreakfasts: req.IncludeBreakfasts,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": plan, "days": plan.Days()})
}

func activePlan(c *gin.Context) (menu.Plan, bool) {
	plan, ok := currentWorkspace(c).ActiveMenu()
	if !ok {
		respondError(c, apperr.New(apperr.NotFound, "web.menu", "Primero genera un menú."))
	}
	return plan, ok
}

func (s *Server) activeMenu(c *gin.Context) {
	plan, ok := activePlan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": plan, "days": plan.Days()})
}

type swapRequest struct {
	Date     string `json:"date" binding:"required,isodate"`
	MealType string `json:"mealType" binding:"required,oneof=breakfast lunch dinner"`
	RecipeID string `json:"recipeId" binding:"required"`
}

func (r swapRequest) toWorkspace() workspace.SwapRequest {
	return workspace.SwapRequest{Date: r.Date, MealType: menu.MealType(r.MealType), RecipeID: r.RecipeID}
}

func (s *Server) previewSwap(c *gin.Context) {
	var req swapRequest
	if err := bindJSON(c, &req, ""); err != nil {
		respondError(c, err)
		return
	}
	preview, err := currentWorkspace(c).PreviewSwap(req.toWorkspace())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (s *Server) confirmSwap(c *gin.Context) {
	var req swapRequest
	if err := bindJSON(c, &req, ""); err != nil {
		respondError(c, err)
		return
	}
	plan, advisory, err := currentWorkspace(c).ConfirmSwap(req.toWorkspace())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": plan, "advisory": advisory})
}

func (s *Server) saveMenu(c *gin.Context) {
	saved, err := currentWorkspace(c).SaveActiveMenu(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func printHTML(c *gin.Context, html []byte, err error) {
	if err != nil {
		respondError(c, apperr.Wrap(apperr.NotFound, "web.print", "No hay nada que imprimir.", err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) printMenu(c *gin.Context) {
	plan, ok := activePlan(c)
	if !ok {
		return
	}
	html, err := export.MenuHTML(plan)
	printHTML(c, html, err)
}

func (s *Server) recipeDetails(c *gin.Context) {
	detail, err := currentWorkspace(c).RecipeDetails(c.Request.Context(), c.Query("dish"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Shopping list

type shoppingResponse struct {
	Items     []shopping.Item  `json:"items"`
	Groups    []shopping.Group `json:"groups"`
	Remaining int              `json:"remaining"`
}

func newShoppingResponse(items []shopping.Item) shoppingResponse {
	return shoppingResponse{
		Items:     items,
		Groups:    shopping.GroupByCategory(items, false),
		Remaining: shopping.Remaining(items),
	}
}

func (s *Server) generateShoppingList(c *gin.Context) {
	items, err := currentWorkspace(c).GenerateShoppingList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newShoppingResponse(items))
}

func currentShoppingList(c *gin.Context) ([]shopping.Item, bool) {
	items, ok := currentWorkspace(c).ShoppingList()
	if !ok {
		respondError(c, apperr.New(apperr.NotFound, "web.shopping", "Primero genera la lista de la compra."))
	}
	return items, ok
}

func (s *Server) shoppingList(c *gin.Context) {
	items, ok := currentShoppingList(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newShoppingResponse(items))
}

func (s *Server) toggleShoppingItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, apperr.Wrap(apperr.MalformedInput, "web.shopping", invalidRequestMessage, err))
		return
	}
	items, err := currentWorkspace(c).ToggleShoppingItem(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newShoppingResponse(items))
}

func (s *Server) printShoppingList(c *gin.Context) {
	items, ok := currentShoppingList(c)
	if !ok {
		return
	}
	html, err := export.ShoppingListHTML(items)
	printHTML(c, html, err)
}

// Saved menus

func (s *Server) listSavedMenus(c *gin.Context) {
	c.JSON(http.StatusOK, currentWorkspace(c).View().SavedMenus)
}

func (s *Server) printSavedMenu(c *gin.Context) {
	saved, err := currentWorkspace(c).SavedMenu(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	html, err := export.MenuHTML(saved.Plan)
	printHTML(c, html, err)
}

func (s *Server) deleteSavedMenu(c *gin.Context) {
	if err := currentWorkspace(c).DeleteSavedMenu(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) dismissError(c *gin.Context) {
	area, err := workspace.ParseArea(c.Param("area"))
	if err != nil {
		respondError(c, err)
		return
	}
	currentWorkspace(c).DismissError(area)
	c.Status(http.StatusNoContent)
}
