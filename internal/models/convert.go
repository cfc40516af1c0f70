package models

// Conversions from storage models to API responses.

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name.String,
		CreatedAt: u.CreatedAt,
	}
}

func NewProjectResponse(p *Project, assets []Asset) ProjectResponse {
	resp := ProjectResponse{
		ID:           p.ID.String(),
		Title:        p.Title,
		BusinessInfo: p.BusinessInfo,
		Features:     p.Features,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for i := range assets {
		resp.Assets = append(resp.Assets, NewAssetResponse(&assets[i]))
	}
	return resp
}

func NewAssetResponse(a *Asset) AssetResponse {
	resp := AssetResponse{
		ID:          a.ID.String(),
		ProjectID:   a.ProjectID.String(),
		StoragePath: a.StoragePath,
		MimeType:    a.MimeType,
		Size:        a.Size,
		IsLogo:      a.IsLogo,
		UploadedAt:  a.UploadedAt,
	}
	if a.Width.Valid {
		w := a.Width.Int32
		resp.Width = &w
	}
	if a.Height.Valid {
		h := a.Height.Int32
		resp.Height = &h
	}
	return resp
}

func NewJobResponse(j *Job, view *JobView) JobResponse {
	resp := JobResponse{
		ID:        j.ID.String(),
		Type:      j.Type,
		ProjectID: j.ProjectID.String(),
		Status:    j.Status,
		Progress:  j.Progress,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		View:      view,
	}
	if j.Error.Valid {
		resp.Error = j.Error.String
	}
	if j.ResultID.Valid {
		resp.ResultID = j.ResultID.UUID.String()
	}
	return resp
}

func NewRenderResponse(r *Render) RenderResponse {
	return RenderResponse{
		ID:        r.ID.String(),
		JobID:     r.JobID.String(),
		ProjectID: r.ProjectID.String(),
		PdfURL:    r.PdfURL,
		PngURL:    r.PngURL.String,
		Copy:      r.Copy,
		Layout:    r.Layout,
		CreatedAt: r.CreatedAt,
	}
}
