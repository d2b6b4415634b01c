package preset

// Display groups of LayoutV1.
const (
	GroupModels    = "Models"
	GroupIdentity  = "Identity"
	GroupFace      = "Facial Structure"
	GroupBody      = "Body Proportions"
	GroupColors    = "Colors"
	GroupCosmetics = "Cosmetics"
	GroupTattoo    = "Tattoo/Mark"
	GroupBodyHair  = "Body Hair"
)

// BodyTypeField is the discriminator field for BodyType.
const BodyTypeField = "body_type"

// layoutBuilder assigns consecutive offsets in declaration order.
type layoutBuilder struct {
	fields []Field
	offset int
	group  string
}

func (b *layoutBuilder) section(group string) *layoutBuilder {
	b.group = group
	return b
}

func (b *layoutBuilder) add(kind Kind, names ...string) *layoutBuilder {
	for _, name := range names {
		f := Field{Name: name, Offset: b.offset, Kind: kind, Group: b.group}
		b.fields = append(b.fields, f)
		b.offset = f.End()
	}
	return b
}

func layoutV1() []Field {
	b := &layoutBuilder{}

	b.section(GroupModels).add(KindU16,
		"face_model", "hair_model", "eye_model", "eyebrow_model",
		"beard_model", "eyepatch_model", "decal_model", "eyelash_model",
	)

	b.section(GroupIdentity).add(KindU8, BodyTypeField)

	b.section(GroupFace).add(KindU8,
		"apparent_age", "facial_aesthetic", "form_emphasis",
		"brow_ridge_height", "inner_brow_ridge", "outer_brow_ridge",
		"cheekbone_height", "cheekbone_depth", "cheekbone_width", "cheekbone_protrusion", "cheeks",
		"chin_tip_position", "chin_length", "chin_protrusion", "chin_depth", "chin_size", "chin_height", "chin_width",
		"eye_position", "eye_size", "eye_slant", "eye_spacing",
		"nose_size", "nose_forehead_ratio", "nose_ridge_depth", "nose_ridge_length", "nose_position",
		"nose_tip_height", "nostril_slant", "nostril_size", "nostril_width", "nose_protrusion",
		"nose_bridge_height", "bridge_protrusion1", "bridge_protrusion2", "nose_bridge_width",
		"nose_height", "nose_slant",
		"face_protrusion", "vertical_face_ratio", "facial_feature_slant", "horizontal_face_ratio",
		"forehead_depth", "forehead_protrusion",
		"jaw_protrusion", "jaw_width", "lower_jaw", "jaw_contour",
		"lip_shape", "lip_size", "lip_fullness", "lip_protrusion", "lip_thickness",
		"mouth_expression", "mouth_protrusion", "mouth_slant", "occlusion",
		"mouth_position", "mouth_width", "mouth_chin_distance",
	)

	b.section(GroupBody).add(KindU8,
		"head_size", "chest_size", "abdomen_size", "arms_size", "legs_size",
	)

	b.section(GroupColors)
	b.add(KindRGB8, "skin_color").add(KindU8, "skin_luster", "pores")
	b.add(KindRGB8, "hair_color").add(KindU8, "luster", "hair_root_darkness", "white_hairs")
	b.add(KindRGB8, "beard_color").add(KindU8, "beard_luster", "beard_root_darkness", "beard_white_hairs")
	b.add(KindRGB8, "brow_color").add(KindU8, "brow_luster", "brow_root_darkness", "brow_white_hairs")
	b.add(KindRGB8, "eye_lash_color", "eye_patch_color")
	for _, side := range []string{"right", "left"} {
		b.add(KindRGB8, side+"_iris_color").add(KindU8, side+"_iris_size", side+"_eye_clouding")
		b.add(KindRGB8, side+"_eye_clouding_color", side+"_eye_white_color")
		b.add(KindI8, side+"_eye_position")
	}

	b.section(GroupCosmetics).add(KindU8, "stubble")
	b.add(KindU8, "dark_circles").add(KindRGB8, "dark_circle_color")
	b.add(KindU8, "cheeks_color_intensity").add(KindRGB8, "cheek_color")
	b.add(KindU8, "eye_liner").add(KindRGB8, "eye_liner_color")
	b.add(KindU8, "eye_shadow_lower").add(KindRGB8, "eye_shadow_lower_color")
	b.add(KindU8, "eye_shadow_upper").add(KindRGB8, "eye_shadow_upper_color")
	b.add(KindU8, "lip_stick").add(KindRGB8, "lip_stick_color")

	b.section(GroupTattoo)
	b.add(KindI8, "tattoo_mark_position_horizontal", "tattoo_mark_position_vertical")
	b.add(KindI16, "tattoo_mark_angle")
	b.add(KindU8, "tattoo_mark_expansion").add(KindRGB8, "tattoo_mark_color").add(KindU8, "tattoo_mark_flip")

	b.section(GroupBodyHair).add(KindU8, "body_hair").add(KindRGB8, "body_hair_color")

	return b.fields
}

// LayoutV1 is the preset record layout used by the save format.
var LayoutV1 = MustSchema(layoutV1())

// CosmeticColors pairs intensity fields with the colour they tint. A colour
// is only meaningful while its intensity is above zero.
var CosmeticColors = []struct {
	Intensity string
	Color     string
}{
	{"dark_circles", "dark_circle_color"},
	{"cheeks_color_intensity", "cheek_color"},
	{"eye_liner", "eye_liner_color"},
	{"eye_shadow_lower", "eye_shadow_lower_color"},
	{"eye_shadow_upper", "eye_shadow_upper_color"},
	{"lip_stick", "lip_stick_color"},
	{"body_hair", "body_hair_color"},
}
