package handlers

import (
	"net/http"

	"checklist_app_go/db"
	"checklist_app_go/middleware"
	"checklist_app_go/models"
	"checklist_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListChecklistsHandler returns all checklists without their groups
func ListChecklistsHandler(c echo.Context) error {
	checklists, err := services.NewChecklistService(db.DB).List()
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, checklists)
}

// GetChecklistHandler returns a checklist with groups and items in display order
func GetChecklistHandler(c echo.Context) error {
	checklist, err := services.NewChecklistService(db.DB).Find(c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, checklist)
}

// CreateChecklistHandler creates a checklist, optionally with nested groups and items
func CreateChecklistHandler(c echo.Context) error {
	checklist := new(models.Checklist)
	if err := c.Bind(checklist); err != nil {
		return badRequest(c)
	}
	checklist.ID = ""

	if err := services.NewChecklistService(db.DB).Create(checklist); err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionCreate,
		ResourceType: services.AuditResourceChecklist,
		ResourceID:   checklist.ID,
		ResourceName: checklist.Title,
		Description:  "Checklist created",
		NewValues:    checklist,
	})

	return c.JSON(http.StatusCreated, checklist)
}

// UpdateChecklistHandler changes title, addresses and templates of a checklist
func UpdateChecklistHandler(c echo.Context) error {
	svc := services.NewChecklistService(db.DB)
	id := c.Param("id")

	old, err := svc.Find(id)
	if err != nil {
		return apiError(c, err)
	}

	input := new(models.Checklist)
	if err := c.Bind(input); err != nil {
		return badRequest(c)
	}

	updated, err := svc.Update(id, input)
	if err != nil {
		return apiError(c, err)
	}

	old.Groups = nil
	snapshot := *updated
	snapshot.Groups = nil
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionUpdate,
		ResourceType: services.AuditResourceChecklist,
		ResourceID:   updated.ID,
		ResourceName: updated.Title,
		Description:  "Checklist updated",
		OldValues:    old,
		NewValues:    snapshot,
	})

	return c.JSON(http.StatusOK, updated)
}

// DeleteChecklistHandler soft-deletes a checklist
func DeleteChecklistHandler(c echo.Context) error {
	svc := services.NewChecklistService(db.DB)
	checklist, err := svc.Find(c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	if err := svc.Delete(checklist.ID); err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionDelete,
		ResourceType: services.AuditResourceChecklist,
		ResourceID:   checklist.ID,
		ResourceName: checklist.Title,
		Description:  "Checklist deleted",
	})

	return c.NoContent(http.StatusNoContent)
}

// CreateGroupHandler appends a group to a checklist
func CreateGroupHandler(c echo.Context) error {
	group := new(models.ChecklistGroup)
	if err := c.Bind(group); err != nil {
		return badRequest(c)
	}

	if err := services.NewChecklistService(db.DB).AddGroup(c.Param("id"), group); err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionCreate,
		ResourceType: services.AuditResourceGroup,
		ResourceID:   group.ID,
		ResourceName: group.Title,
		Description:  "Group added to checklist " + group.ChecklistID,
	})

	return c.JSON(http.StatusCreated, group)
}

// UpdateGroupHandler changes title, description and position of a group
func UpdateGroupHandler(c echo.Context) error {
	input := new(models.ChecklistGroup)
	if err := c.Bind(input); err != nil {
		return badRequest(c)
	}

	group, err := services.NewChecklistService(db.DB).UpdateGroup(c.Param("id"), input)
	if err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionUpdate,
		ResourceType: services.AuditResourceGroup,
		ResourceID:   group.ID,
		ResourceName: group.Title,
		Description:  "Group updated",
		NewValues:    group,
	})

	return c.JSON(http.StatusOK, group)
}

// DeleteGroupHandler removes a group with its items
func DeleteGroupHandler(c echo.Context) error {
	id := c.Param("id")
	if err := services.NewChecklistService(db.DB).DeleteGroup(id); err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionDelete,
		ResourceType: services.AuditResourceGroup,
		ResourceID:   id,
		Description:  "Group deleted",
	})

	return c.NoContent(http.StatusNoContent)
}

// CreateItemHandler appends an item to a group. Radio and checkbox items need options.
func CreateItemHandler(c echo.Context) error {
	item := new(models.GroupItem)
	if err := c.Bind(item); err != nil {
		return badRequest(c)
	}

	if err := services.NewChecklistService(db.DB).AddItem(c.Param("id"), item); err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionCreate,
		ResourceType: services.AuditResourceItem,
		ResourceID:   item.ID,
		ResourceName: item.Label,
		Description:  "Item added to group " + item.GroupID,
		NewValues:    item,
	})

	return c.JSON(http.StatusCreated, item)
}

// UpdateItemHandler replaces label, type, options and position of an item
func UpdateItemHandler(c echo.Context) error {
	input := new(models.GroupItem)
	if err := c.Bind(input); err != nil {
		return badRequest(c)
	}

	item, err := services.NewChecklistService(db.DB).UpdateItem(c.Param("id"), input)
	if err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionUpdate,
		ResourceType: services.AuditResourceItem,
		ResourceID:   item.ID,
		ResourceName: item.Label,
		Description:  "Item updated",
		NewValues:    item,
	})

	return c.JSON(http.StatusOK, item)
}

// DeleteItemHandler removes an item
func DeleteItemHandler(c echo.Context) error {
	id := c.Param("id")
	if err := services.NewChecklistService(db.DB).DeleteItem(id); err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionDelete,
		ResourceType: services.AuditResourceItem,
		ResourceID:   id,
		Description:  "Item deleted",
	})

	return c.NoContent(http.StatusNoContent)
}
