package controllers

import (
	"errors"
	"net/http"

	"library-management-api/db"
	"library-management-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

// GET /books and GET /admin/books — ?search=&genre=&page=&per_page=
func (bc *BookController) Index(c *gin.Context) {
	page, perPage := pageParams(c)
	res, err := bc.Repo.ListBooks(c.Request.Context(), db.BookQuery{
		Search:  c.Query("search"),
		Genre:   c.Query("genre"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	paginated(c, res.Books, meta(page, perPage, res.Total))
}

// GET /books/:id
func (bc *BookController) Show(c *gin.Context) {
	b, err := bc.Repo.FindBookByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "Book not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	success(c, http.StatusOK, "", b)
}

// POST /books/:id/borrow
func (bc *BookController) Borrow(c *gin.Context) {
	u := currentUser(c)

	t, err := bc.Repo.BorrowBook(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		switch {
		case db.IsRecordNotFound(err):
			fail(c, http.StatusNotFound, "Book not found")
		case errors.Is(err, db.ErrNoCopiesAvailable):
			fail(c, http.StatusBadRequest, "No available copies of this book")
		case errors.Is(err, db.ErrAlreadyBorrowed):
			fail(c, http.StatusBadRequest, "You have already borrowed this book")
		default:
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	success(c, http.StatusCreated, "Book borrowed successfully", t)
}

// POST /admin/books
func (bc *BookController) Store(c *gin.Context) {
	var in struct {
		Title       string `json:"title" binding:"required,max=255"`
		Author      string `json:"author" binding:"required,max=255"`
		ISBN        string `json:"isbn" binding:"required,max=20"`
		Genre       string `json:"genre" binding:"max=100"`
		Description string `json:"description"`
		TotalCopies int    `json:"total_copies" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	b := &models.Book{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Genre:           in.Genre,
		Description:     in.Description,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies, // 新书全部可借
	}
	if err := bc.Repo.CreateBook(c.Request.Context(), b); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	success(c, http.StatusCreated, "Book created successfully", b)
}

// PUT /admin/books/:id
func (bc *BookController) Update(c *gin.Context) {
	var in struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Author      *string `json:"author" binding:"omitempty,max=255"`
		ISBN        *string `json:"isbn" binding:"omitempty,max=20"`
		Genre       *string `json:"genre" binding:"omitempty,max=100"`
		Description *string `json:"description"`
		TotalCopies *int    `json:"total_copies" binding:"omitempty,min=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	b, err := bc.Repo.UpdateBook(c.Request.Context(), c.Param("id"), db.BookUpdate{
		Title:       in.Title,
		Author:      in.Author,
		ISBN:        in.ISBN,
		Genre:       in.Genre,
		Description: in.Description,
		TotalCopies: in.TotalCopies,
	})
	if err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "Book not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	success(c, http.StatusOK, "Book updated successfully", b)
}

// DELETE /admin/books/:id
func (bc *BookController) Destroy(c *gin.Context) {
	if _, err := bc.Repo.FindBookByID(c.Request.Context(), c.Param("id")); err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "Book not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := bc.Repo.DeleteBookByID(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	success(c, http.StatusOK, "Book deleted successfully", nil)
}
